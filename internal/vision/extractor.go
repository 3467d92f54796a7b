package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"strings"
	"time"

	"github.com/mona5211005/certificate-system/internal/normalize"
	"github.com/mona5211005/certificate-system/internal/shared/metrics"
	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
)

// Client speaks the external chat-completions contract. The API key is an
// argument so the caller can resolve it per request instead of holding
// process-wide credential state.
type Client interface {
	Complete(ctx context.Context, apiKey, prompt, imageDataURL string) (string, error)
}

// extractionPrompt instructs the model to answer with a bare JSON object
// holding exactly the ten known keys.
const extractionPrompt = `你是专业的赛事获奖证书信息提取专家，严格按要求执行，只返回标准JSON字符串，不要任何多余文字、换行、解释、备注、标点符号。
提取固定字段(英文key不可修改，识别不到则为空字符串)：student_college, competition_project, student_id, student_name, award_category, award_level, competition_type, organizer, award_time, tutor_name
提取规则：1.严格返回JSON格式，无其他内容；2.competition_type固定填写「学科竞赛」；3.award_category只能填写「国家级」或「省级」；4.如实识别，严禁编造任何信息；5.只输出JSON字符串。`

// minPayloadChars is the floor below which the encoded image cannot hold a
// readable photograph, so the network call is skipped outright.
const minPayloadChars = 200

const dataURLPrefix = "data:image/jpeg;base64,"

// Extractor runs the full image-to-fields pipeline against a Client.
type Extractor struct {
	Client Client
}

// Extract encodes the image, calls the extraction service, and parses the
// answer into a Result. It never returns an error: transport failures,
// non-JSON answers, and unusable inputs all degrade to a default-filled
// result carrying the reason.
func (e *Extractor) Extract(ctx context.Context, img image.Image, apiKey string) Result {
	started := time.Now()
	metrics.IncExtractionStarted()
	defer func() {
		metrics.ObserveExtractionDurationMs(float64(time.Since(started).Milliseconds()))
	}()

	encoded, err := normalize.EncodeJPEG(img)
	if err != nil {
		return e.degrade("image encode failed: " + err.Error())
	}
	dataURL := dataURLPrefix + base64.StdEncoding.EncodeToString(encoded)
	if len(dataURL) < minPayloadChars {
		return e.degrade("image payload too small to extract")
	}

	content, err := e.Client.Complete(ctx, apiKey, extractionPrompt, dataURL)
	if err != nil {
		return e.degrade("extraction call failed: " + err.Error())
	}

	fields, reason := parseAnswer(content)
	if reason != "" {
		return e.degrade(reason)
	}
	result := Finalize(fields)
	telemetry.Info("vision.extracted", map[string]any{
		"missing_fields": len(fields.Missing()),
	})
	return result
}

func (e *Extractor) degrade(reason string) Result {
	metrics.IncExtractionDegraded()
	telemetry.Warn("vision.degraded", map[string]any{"reason": reason})
	return Degraded(reason)
}

// parseAnswer isolates the JSON object in the model's answer, tolerating
// code fences or prose around it, and maps it onto the ten fields with
// defaults backfilled. The second return is non-empty when no usable
// object could be recovered.
func parseAnswer(content string) (Fields, string) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Fields{}, "no JSON object in model answer"
	}
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return Fields{}, "model answer is not valid JSON: " + err.Error()
	}
	fields := fieldsFromPayload(payload)
	fields.applyDefaults()
	return fields, ""
}

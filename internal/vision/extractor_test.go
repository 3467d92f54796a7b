package vision

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
)

type stubClient struct {
	content string
	err     error

	calls     int
	gotKey    string
	gotPrompt string
	gotURL    string
}

func (s *stubClient) Complete(ctx context.Context, apiKey, prompt, imageDataURL string) (string, error) {
	s.calls++
	s.gotKey = apiKey
	s.gotPrompt = prompt
	s.gotURL = imageDataURL
	return s.content, s.err
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

const fullAnswer = `{"student_college":"计算机学院","competition_project":"程序设计大赛","student_id":"2025000000001","student_name":"张三","award_category":"国家级","award_level":"一等奖","competition_type":"","organizer":"教育部","award_time":"2024-05-01","tutor_name":"李四"}`

func TestExtractParsesModelAnswer(t *testing.T) {
	stub := &stubClient{content: fullAnswer}
	e := &Extractor{Client: stub}

	got := e.Extract(context.Background(), testImage(), "sk-test")
	if got.Status != StatusOK {
		t.Fatalf("status = %q, want %q (reason %q)", got.Status, StatusOK, got.Reason)
	}
	if got.Fields.StudentName != "张三" || got.Fields.StudentID != "2025000000001" {
		t.Fatalf("unexpected fields: %+v", got.Fields)
	}
	if got.Fields.AwardCategory != "国家级" {
		t.Fatalf("award category overwritten: %q", got.Fields.AwardCategory)
	}
	if got.Fields.CompetitionType != DefaultCompetitionType {
		t.Fatalf("empty competition type not backfilled: %q", got.Fields.CompetitionType)
	}
	if got.Warning != "" {
		t.Fatalf("unexpected warning %q", got.Warning)
	}
}

func TestExtractSendsKeyPromptAndImage(t *testing.T) {
	stub := &stubClient{content: fullAnswer}
	e := &Extractor{Client: stub}

	e.Extract(context.Background(), testImage(), "sk-test")
	if stub.calls != 1 {
		t.Fatalf("expected one call, got %d", stub.calls)
	}
	if stub.gotKey != "sk-test" {
		t.Fatalf("api key = %q", stub.gotKey)
	}
	if !strings.Contains(stub.gotPrompt, "student_college") || !strings.Contains(stub.gotPrompt, "学科竞赛") {
		t.Fatalf("prompt missing field contract: %q", stub.gotPrompt)
	}
	if !strings.HasPrefix(stub.gotURL, dataURLPrefix) {
		t.Fatalf("image url prefix = %q", stub.gotURL[:32])
	}
}

func TestExtractToleratesWrappedAnswer(t *testing.T) {
	stub := &stubClient{content: "好的，识别结果如下：\n```json\n" + fullAnswer + "\n```\n以上。"}
	e := &Extractor{Client: stub}

	got := e.Extract(context.Background(), testImage(), "sk-test")
	if got.Status != StatusOK {
		t.Fatalf("status = %q, reason %q", got.Status, got.Reason)
	}
	if got.Fields.StudentName != "张三" {
		t.Fatalf("fields not parsed from wrapped answer: %+v", got.Fields)
	}
}

func TestExtractFiltersSentinelValues(t *testing.T) {
	stub := &stubClient{content: `{"student_name":"无","organizer":"N/A","tutor_name":"暂无","award_level":"-","student_id":" 123 "}`}
	e := &Extractor{Client: stub}

	got := e.Extract(context.Background(), testImage(), "sk-test")
	if got.Status != StatusOK {
		t.Fatalf("status = %q, reason %q", got.Status, got.Reason)
	}
	if got.Fields.StudentName != "" || got.Fields.Organizer != "" || got.Fields.TutorName != "" || got.Fields.AwardLevel != "" {
		t.Fatalf("sentinel values leaked: %+v", got.Fields)
	}
	if got.Fields.StudentID != "123" {
		t.Fatalf("student id not trimmed: %q", got.Fields.StudentID)
	}
	if !strings.HasPrefix(got.Warning, "部分字段识别失败：") || !strings.HasSuffix(got.Warning, "，请手动补充") {
		t.Fatalf("warning shape: %q", got.Warning)
	}
	if !strings.Contains(got.Warning, "student_name") {
		t.Fatalf("warning does not list missing field: %q", got.Warning)
	}
}

func TestExtractCoercesNumericStudentID(t *testing.T) {
	stub := &stubClient{content: `{"student_id":2025000000001}`}
	e := &Extractor{Client: stub}

	got := e.Extract(context.Background(), testImage(), "sk-test")
	if got.Fields.StudentID != "2025000000001" {
		t.Fatalf("student id = %q, want full digits", got.Fields.StudentID)
	}
}

func TestExtractDegrades(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubClient
		reason string
	}{
		{name: "client error", stub: &stubClient{err: errors.New("dial tcp: refused")}, reason: "extraction call failed"},
		{name: "no JSON object", stub: &stubClient{content: "抱歉，无法识别该图片。"}, reason: "no JSON object"},
		{name: "broken JSON", stub: &stubClient{content: `{"student_name": }`}, reason: "not valid JSON"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := &Extractor{Client: tt.stub}
			got := e.Extract(context.Background(), testImage(), "sk-test")
			if !got.IsDegraded() {
				t.Fatalf("expected degraded result, got %+v", got)
			}
			if !strings.Contains(got.Reason, tt.reason) {
				t.Fatalf("reason %q does not mention %q", got.Reason, tt.reason)
			}
			if got.Fields != DefaultFields() {
				t.Fatalf("degraded fields = %+v, want defaults", got.Fields)
			}
		})
	}
}

func TestDefaultFields(t *testing.T) {
	f := DefaultFields()
	if f.CompetitionType != DefaultCompetitionType || f.AwardCategory != DefaultAwardCategory {
		t.Fatalf("defaults not applied: %+v", f)
	}
	if got := len(f.Missing()); got != 8 {
		t.Fatalf("missing count = %d, want 8", got)
	}
}

func TestFinalizeListsMissingInOrder(t *testing.T) {
	f := DefaultFields()
	f.StudentName = "张三"
	got := Finalize(f)
	want := "部分字段识别失败：student_college, competition_project, student_id, award_level, organizer, award_time, tutor_name，请手动补充"
	if got.Warning != want {
		t.Fatalf("warning = %q, want %q", got.Warning, want)
	}
	if got.Status != StatusOK {
		t.Fatalf("status = %q", got.Status)
	}
}

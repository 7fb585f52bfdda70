package cv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"code.sajari.com/docconv"
	"github.com/pkg/errors"

	"recruitflow/internal/domain"
)

// Extraction is the analyzer output the pipeline scores against a job.
type Extraction struct {
	Name            string
	Email           string
	Skills          []string
	ExperienceYears int
}

// DocumentAnalyzer turns raw resume bytes into a structured extraction.
// Implementations are opaque to the engine (OCR, NLP, LLM); a failed
// analysis is reported as domain.ErrUnparsableDocument.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, data []byte, mimeType string) (*Extraction, error)
}

// mime types accepted by the ingestion pipeline, with their short aliases
var allowedMimeTypes = map[string]string{
	"pdf":  "pdf",
	"doc":  "doc",
	"docx": "docx",
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// NormalizeMimeType maps a declared mime type onto its short form
// (pdf, doc, docx) or fails with a validation error.
func NormalizeMimeType(mimeType string) (string, error) {
	if short, ok := allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return short, nil
	}
	return "", errors.Wrapf(domain.ErrValidation, "unsupported mime type %q", mimeType)
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:\+\s*)?(?:years?|ans?)`)
)

// DocconvAnalyzer extracts text with docconv and runs keyword-based skill
// matching plus an experience heuristic over it. It is the default
// production analyzer; tests inject fakes instead.
type DocconvAnalyzer struct {
	workDir       string
	skillKeywords []string
}

// Common skill keywords scanned in extracted resume text.
var defaultSkillKeywords = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript", "PHP", "Ruby", "C++", "C#",
	"React", "Vue", "Angular", "Node.js", "Docker", "Kubernetes",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "SQL", "AWS", "Azure", "GCP",
	"GraphQL", "REST", "Microservices", "Git", "CI/CD",
	"Machine Learning", "Data Science", "DevOps",
}

func NewDocconvAnalyzer(workDir string) *DocconvAnalyzer {
	return &DocconvAnalyzer{
		workDir:       workDir,
		skillKeywords: defaultSkillKeywords,
	}
}

// Analyze converts the document to text and extracts contact, skills and
// experience. The bytes are spooled to a temp file because docconv
// dispatches converters by path.
func (a *DocconvAnalyzer) Analyze(ctx context.Context, data []byte, mimeType string) (*Extraction, error) {
	short, err := NormalizeMimeType(mimeType)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(a.workDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating work dir")
	}
	tmp, err := os.CreateTemp(a.workDir, "resume-*."+short)
	if err != nil {
		return nil, errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, errors.Wrap(err, "writing temp file")
	}
	tmp.Close()

	res, err := docconv.ConvertPath(tmp.Name())
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUnparsableDocument, "converting %s: %v", filepath.Base(tmp.Name()), err)
	}
	text := res.Body
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(domain.ErrUnparsableDocument, "document produced no text")
	}

	return &Extraction{
		Name:            firstNonEmptyLine(text),
		Email:           emailPattern.FindString(text),
		Skills:          a.extractSkills(text),
		ExperienceYears: extractExperienceYears(text),
	}, nil
}

func (a *DocconvAnalyzer) extractSkills(text string) []string {
	textLower := strings.ToLower(text)
	var skills []string
	for _, kw := range a.skillKeywords {
		if strings.Contains(textLower, strings.ToLower(kw)) {
			skills = append(skills, kw)
		}
	}
	return skills
}

// extractExperienceYears scans for "N years" style phrases and keeps the
// largest plausible value.
func extractExperienceYears(text string) int {
	best := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best && n <= 50 {
			best = n
		}
	}
	return best
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			// avoid mistaking an email header for a name
			if emailPattern.MatchString(trimmed) && len(strings.Fields(trimmed)) == 1 {
				continue
			}
			return trimmed
		}
	}
	return ""
}

var _ DocumentAnalyzer = (*DocconvAnalyzer)(nil)

// String implements fmt.Stringer for log output.
func (a *DocconvAnalyzer) String() string {
	return fmt.Sprintf("docconv analyzer (workdir %s)", a.workDir)
}

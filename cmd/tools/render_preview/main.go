package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/preview"
)

const defaultOutput = "preview.html"

// render_preview writes a standalone preview page for a profile record and
// prints the lines a reviewer checks first.
func main() {
	var input string
	var output string
	var lang string

	flag.StringVar(&input, "in", "", "profile JSON file (defaults to the built-in record)")
	flag.StringVar(&output, "out", defaultOutput, "output HTML file")
	flag.StringVar(&lang, "lang", "", "override language (en or ar)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	p, err := loadProfile(input)
	if err != nil {
		logger.Fatal("failed to load profile", zap.String("input", input), zap.Error(err))
	}

	if lang != "" {
		parsed, err := domain.ParseLanguage(lang)
		if err != nil {
			logger.Fatal("invalid language", zap.String("lang", lang), zap.Error(err))
		}
		p.Language = parsed
	}

	renderer, err := preview.NewRenderer()
	if err != nil {
		logger.Fatal("failed to create renderer", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, preview.Build(p, time.Now().Year())); err != nil {
		logger.Fatal("failed to render preview", zap.Error(err))
	}

	summary, err := summarize(buf.Bytes())
	if err != nil {
		logger.Fatal("failed to inspect rendered preview", zap.Error(err))
	}

	if err := writeOutput(output, buf.Bytes()); err != nil {
		logger.Fatal("failed to write preview", zap.String("output", output), zap.Error(err))
	}

	for _, line := range summary {
		fmt.Println(line)
	}
	logger.Info("Preview written", zap.String("output", output), zap.String("language", string(p.Language)))
}

func loadProfile(path string) (domain.Profile, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Profile{}, err
	}

	p := domain.DefaultProfile()
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func summarize(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	root := doc.Find("#profile-preview").First()
	if root.Length() == 0 {
		return nil, fmt.Errorf("preview container not found")
	}

	dir, _ := root.Attr("dir")
	lines := []string{
		"dir: " + dir,
		"name: " + normalizeText(root.Find(".profile-name").First().Text()),
		fmt.Sprintf("verified: %t", root.Find(".verified-badge").Length() > 0),
	}
	root.Find(".intro-line").Each(func(_ int, sel *goquery.Selection) {
		lines = append(lines, "intro: "+normalizeText(sel.Text()))
	})
	return lines, nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

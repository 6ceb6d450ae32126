package service

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/model"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"golang.org/x/image/font"
	"google.golang.org/api/option"
)

type CertificateRequest struct {
	Name     string
	Subject  model.Subject
	Score    int
	Total    int
	IssuedAt time.Time
}

type Certificate struct {
	MIMEType string
	Data     []byte
	Source   string // "gemini" or "rendered"
}

// CertificateGenerator is best effort: callers treat any error as "no certificate".
type CertificateGenerator interface {
	Generate(ctx context.Context, req CertificateRequest) (*Certificate, error)
}

type certificateService struct {
	image    *genai.GenerativeModel
	renderer *certificateRenderer
}

// NewCertificateService asks the Gemini image model first and falls back to
// local rendering when it is unavailable or returns no image.
func NewCertificateService(lc fx.Lifecycle, cfg *config.Config) (CertificateGenerator, error) {
	svc := &certificateService{renderer: newCertificateRenderer(cfg.Certificate.FontPath)}
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Certificates will be rendered locally.")
		return svc, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini image client: %w", err)
	}
	appendCloseHook(lc, "gemini image client", client.Close)
	svc.image = client.GenerativeModel(cfg.GeminiImageModel)
	return svc, nil
}

func certificatePrompt(req CertificateRequest) string {
	return fmt.Sprintf(`A professional, clean, ultra-minimalist white academic certificate of achievement for "%[1]s".
Text to include: "Quiz X.ai Excellence Award", "%[1]s", "Subject: %[2]s", "Score: %[3]d/%[4]d".
Visual style: White pure background, elegant black thin serif or sans-serif typography, high-end museum/gallery aesthetic.
Center a very simple, single-line geometric icon representing %[2]s.
Absolutely no busy patterns, no dark colors, no glows. Just pure white, clean lines, and sophisticated minimalism. High-resolution 4K.`,
		req.Name, req.Subject, req.Score, req.Total)
}

func (s *certificateService) Generate(ctx context.Context, req CertificateRequest) (*Certificate, error) {
	if s.image != nil {
		cert, err := s.generateImage(ctx, req)
		if err == nil {
			return cert, nil
		}
		log.Warn().Err(err).Str("subject", string(req.Subject)).Msg("Gemini certificate failed, rendering locally")
	}
	return s.renderer.Generate(ctx, req)
}

func (s *certificateService) generateImage(ctx context.Context, req CertificateRequest) (*Certificate, error) {
	resp, err := s.image.GenerateContent(ctx, genai.Text(certificatePrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini image request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			mimeType := blob.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &Certificate{MIMEType: mimeType, Data: blob.Data, Source: "gemini"}, nil
		}
	}
	return nil, fmt.Errorf("gemini returned no inline image")
}

const (
	certificateWidth  = 1200
	certificateHeight = 850
)

type certificateRenderer struct {
	titleFace font.Face
	bodyFace  font.Face
}

func newCertificateRenderer(fontPath string) *certificateRenderer {
	r := &certificateRenderer{}
	if fontPath == "" {
		return r
	}
	title, err := gg.LoadFontFace(fontPath, 56)
	if err != nil {
		log.Warn().Err(err).Str("fontPath", fontPath).Msg("Failed to load certificate font, using built-in face")
		return r
	}
	body, err := gg.LoadFontFace(fontPath, 30)
	if err != nil {
		log.Warn().Err(err).Str("fontPath", fontPath).Msg("Failed to load certificate font, using built-in face")
		return r
	}
	r.titleFace, r.bodyFace = title, body
	return r
}

// NewCertificateRenderer renders certificates locally only.
func NewCertificateRenderer(fontPath string) CertificateGenerator {
	return newCertificateRenderer(fontPath)
}

func (r *certificateRenderer) Generate(_ context.Context, req CertificateRequest) (*Certificate, error) {
	if strings.TrimSpace(req.Name) == "" || req.Total <= 0 {
		return nil, fmt.Errorf("incomplete certificate request")
	}
	w, h := float64(certificateWidth), float64(certificateHeight)
	dc := gg.NewContext(certificateWidth, certificateHeight)

	dc.SetColor(color.White)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.SetLineWidth(2)
	dc.DrawRectangle(40, 40, w-80, h-80)
	dc.Stroke()
	dc.SetLineWidth(0.75)
	dc.DrawRectangle(56, 56, w-112, h-112)
	dc.Stroke()

	dc.DrawCircle(w/2, 230, 44)
	dc.Stroke()

	r.useFace(dc, r.titleFace)
	dc.DrawStringAnchored("Quiz X.ai Excellence Award", w/2, 350, 0.5, 0.5)
	dc.DrawStringAnchored(req.Name, w/2, 450, 0.5, 0.5)

	r.useFace(dc, r.bodyFace)
	dc.SetColor(color.Gray{Y: 60})
	dc.DrawStringAnchored("Subject: "+req.Subject.Label(), w/2, 550, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("Score: %d/%d (%d%%)", req.Score, req.Total, Percentage(req.Score, req.Total)), w/2, 600, 0.5, 0.5)
	if !req.IssuedAt.IsZero() {
		dc.DrawStringAnchored(req.IssuedAt.Format("January 2, 2006"), w/2, 700, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return &Certificate{MIMEType: "image/png", Data: buf.Bytes(), Source: "rendered"}, nil
}

func (r *certificateRenderer) useFace(dc *gg.Context, face font.Face) {
	if face != nil {
		dc.SetFontFace(face)
	}
}

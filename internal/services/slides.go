package services

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/presentation"
	"go.uber.org/zap"
)

const bodyFontSize = 18 * measurement.Point

// SlideService serializes a summary into a three slide deck: title, key
// points, action items.
type SlideService struct {
	logger *zap.Logger
}

func NewSlideService(logger *zap.Logger) *SlideService {
	return &SlideService{logger: logger}
}

func (s *SlideService) Export(title string, bullets, actions []string) ([]byte, error) {
	ppt := presentation.New()
	defer ppt.Close()

	titleSlide := ppt.AddSlide()
	tb := titleSlide.AddTextBox()
	tb.Properties().SetPosition(0.5*measurement.Inch, 1.5*measurement.Inch)
	tb.Properties().SetSize(9*measurement.Inch, 1.5*measurement.Inch)
	run := tb.AddParagraph().AddRun()
	run.SetText(title)
	run.Properties().SetSize(32 * measurement.Point)
	run.Properties().SetBold(true)

	s.addBulletSlide(ppt, "Key points", bullets)
	s.addBulletSlide(ppt, "Action items", actions)

	var buf bytes.Buffer
	if err := ppt.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize presentation: %w", err)
	}

	s.logger.Info("deck exported",
		zap.String("title", title),
		zap.Int("bullets", len(bullets)),
		zap.Int("actions", len(actions)))
	return buf.Bytes(), nil
}

func (s *SlideService) addBulletSlide(ppt *presentation.Presentation, heading string, items []string) {
	slide := ppt.AddSlide()

	header := slide.AddTextBox()
	header.Properties().SetPosition(0.5*measurement.Inch, 0.4*measurement.Inch)
	header.Properties().SetSize(9*measurement.Inch, 0.8*measurement.Inch)
	run := header.AddParagraph().AddRun()
	run.SetText(heading)
	run.Properties().SetSize(24 * measurement.Point)
	run.Properties().SetBold(true)

	body := slide.AddTextBox()
	body.Properties().SetPosition(0.7*measurement.Inch, 1.4*measurement.Inch)
	body.Properties().SetSize(8.6*measurement.Inch, 5*measurement.Inch)
	for _, item := range items {
		r := body.AddParagraph().AddRun()
		r.SetText("• " + item)
		r.Properties().SetSize(bodyFontSize)
	}
}

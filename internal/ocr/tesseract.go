package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"voiceassist/internal/apperr"
)

// Tesseract распознаёт текст через libtesseract (gosseract).
type Tesseract struct{}

// Recognize распознаёт слова на изображении. Текст - слова через пробел,
// уверенность - среднее по словам.
func (Tesseract) Recognize(ctx context.Context, img image.Image, languages []string) (Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("%w: кодирование снимка: %v", apperr.ErrRecognition, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(languages...); err != nil {
		return Result{}, fmt.Errorf("%w: языки %s: %v", apperr.ErrRecognition, strings.Join(languages, "+"), err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrRecognition, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrRecognition, err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{Text: b.Word, Confidence: b.Confidence})
	}
	return ResultFromWords(words), nil
}

// Word - одно распознанное слово.
type Word struct {
	Text       string
	Confidence float64
}

// ResultFromWords собирает результат из слов: пустые слова пропускаются,
// слова с отрицательной уверенностью не входят в среднее.
func ResultFromWords(words []Word) Result {
	var (
		texts []string
		sum   float64
		n     int
	)
	for _, w := range words {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		texts = append(texts, t)
		if w.Confidence >= 0 {
			sum += w.Confidence
			n++
		}
	}

	res := Result{Text: strings.Join(texts, " ")}
	if n > 0 {
		res.Confidence = sum / float64(n)
	}
	return res
}

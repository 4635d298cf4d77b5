package ocr

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"voiceassist/internal/apperr"
)

// ParseRegion разбирает область экрана в формате "x,y,w,h".
// Пустая строка означает весь рабочий стол.
func ParseRegion(s string) (image.Rectangle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return image.Rectangle{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("%w: область %q: нужно x,y,w,h", apperr.ErrUsage, s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("%w: область %q: %v", apperr.ErrUsage, s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: область %q: ширина и высота должны быть больше нуля", apperr.ErrUsage, s)
	}

	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

package pdf

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"embroidery-reports/src/pkg/compose"
)

/*
LoadLogo reads an image file, scales it down to fit maxWidth x maxHeight
points (never up) and re-encodes it as PNG for embedding. The returned logo
carries its drawn size in points.
*/
func LoadLogo(path string, maxWidth, maxHeight float64) (*compose.Logo, error) {
	source, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open logo %s: %w", path, err)
	}
	return fitLogo(source, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), maxWidth, maxHeight)
}

func fitLogo(source image.Image, name string, maxWidth, maxHeight float64) (*compose.Logo, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("logo box %.0fx%.0f is empty", maxWidth, maxHeight)
	}

	// render at 2x the drawn size so the logo stays sharp when printed
	fitted := imaging.Fit(source, int(maxWidth*2), int(maxHeight*2), imaging.Lanczos)
	bounds := fitted.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("logo %s has no pixels", name)
	}

	var buf bytes.Buffer
	err := imaging.Encode(&buf, fitted, imaging.PNG)
	if err != nil {
		return nil, fmt.Errorf("encode logo %s: %w", name, err)
	}

	scale := min(maxWidth/float64(bounds.Dx()), maxHeight/float64(bounds.Dy()), 1)
	return &compose.Logo{
		Name:   "logo-" + name,
		Data:   buf.Bytes(),
		Width:  float64(bounds.Dx()) * scale,
		Height: float64(bounds.Dy()) * scale,
	}, nil
}

package whatsapp

import (
	"fmt"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// RenderQR draws the pairing code with half-block runes, two bitmap rows per line.
func RenderQR(code string) (string, error) {
	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", err
	}
	qr.DisableBorder = true
	bmp := qr.Bitmap()
	if len(bmp)%2 == 1 {
		width := 0
		if len(bmp) > 0 {
			width = len(bmp[0])
		}
		bmp = append(bmp, make([]bool, width))
	}

	var out strings.Builder
	for y := 0; y < len(bmp); y += 2 {
		top, bottom := bmp[y], bmp[y+1]
		for x := range top {
			switch {
			case top[x] && bottom[x]:
				out.WriteRune('█')
			case top[x]:
				out.WriteRune('▀')
			case bottom[x]:
				out.WriteRune('▄')
			default:
				out.WriteRune(' ')
			}
		}
		out.WriteByte('\n')
	}
	return out.String(), nil
}

// PrintQR writes the pairing QR so the operator can scan it from the server console.
func PrintQR(w io.Writer, channel, code string) {
	art, err := RenderQR(code)
	if err != nil {
		fmt.Fprintln(w, "[QR] error al generar QR:", err)
		return
	}
	fmt.Fprintf(w, "\n[QR] Escanea con WhatsApp para vincular el canal %s:\n%s\n", channel, art)
}

package share

import (
	qrcode "github.com/skip2/go-qrcode"

	"github.com/ateliernord/commandes/pkg/errors"
)

const qrSize = 300

// ShareURL picks the address a phone should open: the configured public
// URL when one is set, otherwise the host the request came in on.
func ShareURL(publicURL, requestHost string) string {
	if publicURL != "" {
		return publicURL
	}
	return "http://" + requestHost
}

// QRPNG encodes the share URL as a PNG.
func QRPNG(url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New(errors.CodeValidation, "share url is empty")
	}
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "encoding qr code")
	}
	return png, nil
}

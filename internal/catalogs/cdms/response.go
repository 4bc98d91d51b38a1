package cdms

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"astrocat/internal/catalogs"
	"astrocat/pkg/htmlutil"
)

const (
	tableFrameMarker  = "tab"
	headerFrameMarker = "head"
	zeroLinesMessage  = "Zero lines were found"
)

// Response is what the search form answered with, either a FrameResponse
// that still has to be followed or a DataResponse holding the listing.
type Response interface {
	isResponse()
}

// FrameResponse is a frameset whose table frame is at Src.
type FrameResponse struct {
	Src string
}

// DataResponse holds the line listing, as html with a <pre> block or as plain text.
type DataResponse struct {
	Body []byte
}

func (FrameResponse) isResponse() {}
func (DataResponse) isResponse()  {}

func looksLikeHtml(body []byte) bool {
	lower := bytes.ToLower(body)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<body"))
}

// Classify tells a frameset apart from a listing. An html page that is
// neither is an ErrNoData.
func Classify(ctx context.Context, body []byte) (Response, error) {
	if bytes.Contains(body, []byte(zeroLinesMessage)) {
		return DataResponse{Body: body}, nil
	}

	if htmlutil.IsFrameset(body) {
		src, err := htmlutil.FindFrame(ctx, body, tableFrameMarker, headerFrameMarker)
		if errors.Is(err, htmlutil.ErrNoFrame) {
			return nil, fmt.Errorf("did not find table in response: %w", catalogs.ErrNoData)
		}
		if err != nil {
			return nil, err
		}
		return FrameResponse{Src: src}, nil
	}

	if !looksLikeHtml(body) || bytes.Contains(bytes.ToLower(body), []byte("<pre")) {
		return DataResponse{Body: body}, nil
	}
	return nil, fmt.Errorf("did not find table in response: %w", catalogs.ErrNoData)
}

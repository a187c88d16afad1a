package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cofoundr/types"
)

// imageURLKeys are probed in order on a JSON /image response
var imageURLKeys = []string{"url", "image_url", "image"}

// Image generates a brochure image for an idea. The service answers either
// with JSON carrying a URL or with the image bytes; binary images are stored
// and returned as a local handle.
func (c *Client) Image(ctx context.Context, idea string) (*types.ImageResult, error) {
	var result *types.ImageResult
	err := c.do(ctx, http.MethodPost, PathImage, ideaRequest{Idea: idea}, func(ctx context.Context, resp *http.Response) error {
		r, err := c.decodeImage(ctx, resp)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) decodeImage(ctx context.Context, resp *http.Response) (*types.ImageResult, error) {
	contentType := resp.Header.Get("Content-Type")

	if strings.Contains(contentType, "application/json") {
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		for _, key := range imageURLKeys {
			if url, ok := body[key].(string); ok && url != "" {
				return &types.ImageResult{Kind: types.ImageURL, URL: url}, nil
			}
		}
		return nil, &Error{Message: errNoImageURL.Error(), Err: errNoImageURL}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	handle, err := c.artifacts.Save(ctx, BrochureFileName, contentType, data)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to store image: %v", err), Err: err}
	}

	return &types.ImageResult{
		Kind:        types.ImageBinary,
		Handle:      handle,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

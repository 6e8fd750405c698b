// Package vision checks proposed placement boxes against faces detected
// in the template image. The geometric auditor stays oblivious to image
// content; this is the one semantic check the ingest path performs.
package vision

import (
	"context"
	"fmt"
	"math"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

// Client is an interface for the vision.ImageAnnotatorClient.
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/v2/apiv1
// This interface is used for mocking the vision.ImageAnnotatorClient in unit tests.
type Client interface {
	DetectFaces(ctx context.Context, img *visionpb.Image, imageContext *visionpb.ImageContext, maxResults int, opts ...gax.CallOption) ([]*visionpb.FaceAnnotation, error)
}

const maxFaces = 10

// FaceOverlaps returns the fields whose box overlaps a detected face,
// in stable field order. An image with no faces returns nil.
func FaceOverlaps(ctx context.Context, client Client, imageBytes []byte, boxes map[string]layout.Box, imgWidth, imgHeight int) ([]string, error) {
	faces, err := client.DetectFaces(ctx, &visionpb.Image{Content: imageBytes}, nil, maxFaces)
	if err != nil {
		return nil, fmt.Errorf("failed to detect faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, nil
	}

	// Annotations without bounding poly vertices carry no position and are
	// skipped.
	located := utils.Filter(faces, func(face *visionpb.FaceAnnotation) bool {
		return len(face.GetBoundingPoly().GetVertices()) > 0
	})
	faceBoxes := utils.Map(located, func(face *visionpb.FaceAnnotation) layout.Box {
		return normalizedBox(face.GetBoundingPoly(), imgWidth, imgHeight)
	})

	var overlapping []string
	for _, field := range utils.SortedKeys(boxes) {
		box := boxes[field]
		for _, faceBox := range faceBoxes {
			if layout.Overlaps(box, faceBox) {
				overlapping = append(overlapping, field)
				break
			}
		}
	}
	return overlapping, nil
}

// normalizedBox converts a pixel bounding poly to a center-based box in
// unit coordinates.
func normalizedBox(poly *visionpb.BoundingPoly, imgWidth, imgHeight int) layout.Box {
	left, top := math.MaxFloat64, math.MaxFloat64
	right, bottom := 0.0, 0.0
	for _, vertex := range poly.GetVertices() {
		left = math.Min(left, float64(vertex.GetX()))
		top = math.Min(top, float64(vertex.GetY()))
		right = math.Max(right, float64(vertex.GetX()))
		bottom = math.Max(bottom, float64(vertex.GetY()))
	}

	width := float64(imgWidth)
	height := float64(imgHeight)
	return layout.Box{
		X:      (left + right) / 2 / width,
		Y:      (top + bottom) / 2 / height,
		Width:  (right - left) / width,
		Height: (bottom - top) / height,
	}
}

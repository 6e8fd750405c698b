package impl

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/coinmeme-project/coinmeme/pkg/memedb"
)

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var request GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.Topic == "" || request.Template == "" {
		http.Error(w, "topic and template are required", http.StatusBadRequest)
		return
	}

	template, ok := memedb.FindByName(s.templates, request.Template)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown template %q", request.Template), http.StatusNotFound)
		return
	}

	// Caption generation and image loading are independent; run both at once.
	imageChan := make(chan struct {
		image image.Image
		err   error
	})
	captionsChan := make(chan map[string]string)
	go func() {
		img, err := s.loadTemplateImage(template.Name)
		imageChan <- struct {
			image image.Image
			err   error
		}{img, err}
	}()
	go func() {
		captionsChan <- s.captioner.Generate(r.Context(), request.Topic, template)
	}()

	imageResult := <-imageChan
	captions := <-captionsChan
	if imageResult.err != nil {
		log.Printf("Failed to load template image for %s: %v", template.Name, imageResult.err)
		http.Error(w, "template image unavailable", http.StatusInternalServerError)
		return
	}

	composed := s.renderer.Overlay(imageResult.image, template.BoundingBoxes, captions)

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, composed); err != nil {
		log.Printf("Failed to encode meme image: %v", err)
		http.Error(w, "failed to encode image", http.StatusInternalServerError)
		return
	}

	if s.storage.Client != nil && s.storage.OutputBucket != "" {
		objectName := fmt.Sprintf("meme-%d-%s.png", s.now().UTC().Unix(), template.Name)
		if err := s.storage.Client.SaveBytes(r.Context(), s.storage.OutputBucket, objectName, buffer.Bytes()); err != nil {
			// Archiving is best-effort; the response still carries the image.
			log.Printf("Failed to archive meme %s: %v", objectName, err)
		}
	}

	writeJSON(w, GenerateResponse{
		Captions: captions,
		UriImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes()),
	})
}

func (s *server) loadTemplateImage(name string) (image.Image, error) {
	path := filepath.Join(s.imageDir, name+".jpg")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template image %s: %w", path, err)
	}
	return img, nil
}

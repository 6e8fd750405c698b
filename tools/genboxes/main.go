// Command genboxes asks a vision-capable model to propose text placement
// boxes for every template whose image is available, optionally checks
// the proposals against detected faces, and writes the updated records
// to a sibling file.
package main

import (
	"bytes"
	"context"
	"flag"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	gcv "cloud.google.com/go/vision/apiv1"
	"github.com/ridge/must/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/coinmeme-project/coinmeme/pkg/env"
	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	coinOpenai "github.com/coinmeme-project/coinmeme/pkg/openai"
	"github.com/coinmeme-project/coinmeme/server/impl/boxgen"
	"github.com/coinmeme-project/coinmeme/server/impl/vision"
)

func main() {
	dbPath := flag.String("db", "memedb.jsonl", "path to the template db")
	outPath := flag.String("out", "memedb_ai_generated.jsonl", "path for the updated db")
	imagesDir := flag.String("images", "meme_templates", "directory holding <name>.jpg template images")
	flag.Parse()

	env.Load()
	ctx := context.Background()

	proposer := boxgen.New(
		coinOpenai.New(openai.NewClient(env.RequiredStringVariable("OPENAI_API_KEY"))),
		env.StringVariable("BOXGEN_MODEL", ""),
		time.Second/2, /* =backoffDuration */
	)

	var faceClient vision.Client
	if os.Getenv("MEME_FACE_CHECK") == "1" {
		faceClient = must.OK1(gcv.NewImageAnnotatorClient(ctx))
	}

	templates := must.OK1(memedb.Load(*dbPath))
	log.Printf("Processing %d templates", len(templates))

	for i, template := range templates {
		if len(template.Schema) == 0 {
			log.Printf("No schema for template %s, skipping", template.Name)
			continue
		}

		imagePath := findTemplateImage(*imagesDir, template.Name)
		if imagePath == "" {
			log.Printf("No image file found for template %s, skipping", template.Name)
			continue
		}

		imageBytes, err := os.ReadFile(imagePath)
		if err != nil {
			log.Printf("Failed to read %s: %v", imagePath, err)
			continue
		}
		config, _, err := image.DecodeConfig(bytes.NewReader(imageBytes))
		if err != nil {
			log.Printf("Failed to decode %s: %v", imagePath, err)
			continue
		}

		log.Printf("Analyzing %s (%s)", template.Name, filepath.Base(imagePath))
		boxes, err := proposer.Propose(ctx, imageBytes, template.Name, template.Schema, config.Width, config.Height)
		if err != nil {
			log.Printf("Failed to generate bounding boxes for %s: %v", template.Name, err)
			continue
		}
		log.Printf("Generated bounding boxes for %d fields", len(boxes))

		if faceClient != nil {
			covered, err := vision.FaceOverlaps(ctx, faceClient, imageBytes, boxes, config.Width, config.Height)
			if err != nil {
				log.Printf("Face check failed for %s: %v", template.Name, err)
			} else if len(covered) > 0 {
				log.Printf("Warning: boxes over detected faces in %s: %s", template.Name, strings.Join(covered, ", "))
			}
		}

		templates[i].BoundingBoxes = boxes
	}

	must.OK(memedb.WriteAll(*outPath, templates))
	log.Printf("Updated template db saved to %s", *outPath)
	log.Printf("To apply changes, run: mv %s %s", *outPath, *dbPath)
}

// findTemplateImage matches a template name to an image file the way the
// template library is maintained: <name>.jpg, falling back to a
// normalized comparison of existing files.
func findTemplateImage(dir, name string) string {
	direct := filepath.Join(dir, name+".jpg")
	if _, err := os.Stat(direct); err == nil {
		return direct
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		normalized := strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(base))
		if strings.Contains(normalized, strings.ToLower(name)) || strings.Contains(strings.ToLower(name), normalized) {
			return filepath.Join(dir, entry.Name())
		}
	}
	return ""
}

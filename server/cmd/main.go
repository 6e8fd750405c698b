package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gcs "cloud.google.com/go/storage"
	"github.com/google/generative-ai-go/genai"
	"github.com/ridge/must/v2"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/coinmeme-project/coinmeme/pkg/env"
	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	coinOpenai "github.com/coinmeme-project/coinmeme/pkg/openai"
	"github.com/coinmeme-project/coinmeme/server/impl"
	"github.com/coinmeme-project/coinmeme/server/impl/caption"
	"github.com/coinmeme-project/coinmeme/server/impl/font"
	coinGenai "github.com/coinmeme-project/coinmeme/server/impl/genai"
	"github.com/coinmeme-project/coinmeme/server/impl/render"
	"github.com/coinmeme-project/coinmeme/server/impl/storage"
)

func main() {
	env.Load()
	ctx := context.Background()

	fontProvider := must.OK1(font.New(env.StringVariable("MEME_FONT_PATH", "")))
	renderer := render.New(fontProvider, nil)

	templates := must.OK1(memedb.Load(env.StringVariable("MEME_DB_PATH", "memedb.jsonl")))
	briefs := must.OK1(memedb.LoadBriefs(env.StringVariable("MEME_BRIEFS_DIR", "meme_briefs")))
	log.Printf("Loaded %d templates and %d briefs", len(templates), len(briefs))

	captionClient, captionModel := captionBackend(ctx)
	captioner := caption.New(captionClient, captionModel, time.Second/2 /* =backoffDuration */)

	storageSpec := impl.Storage{OutputBucket: os.Getenv("MEME_OUTPUT_BUCKET")}
	if storageSpec.OutputBucket != "" {
		storageSpec.Client = storage.New(must.OK1(gcs.NewClient(ctx)))
	}

	server := impl.New(
		captioner,
		renderer,
		templates,
		briefs,
		env.StringVariable("MEME_TEMPLATES_DIR", "meme_templates"),
		storageSpec,
	)

	port := env.IntVariable("MEME_PORT", 8080)
	handler := server.Routes(os.Getenv("MEME_API_KEY"), env.StringVariable("MEME_STATIC_FILE_DIR", ""))
	log.Printf("coinmeme server listening on port %d", port)
	must.OK(http.ListenAndServe(fmt.Sprintf(":%d", port), handler))
}

// captionBackend picks the chat-completion provider. OpenAI is the
// default; CAPTION_PROVIDER=gemini switches to the Gemini adapter.
func captionBackend(ctx context.Context) (coinOpenai.Client, string) {
	switch env.StringVariable("CAPTION_PROVIDER", "openai") {
	case "gemini":
		geminiKey := apiKey(ctx, "GEMINI_API_KEY", "GEMINI_API_KEY_SECRET_NAME")
		client := coinGenai.New(must.OK1(genai.NewClient(ctx, option.WithAPIKey(geminiKey))))
		return client, env.StringVariable("CAPTION_MODEL", string(coinGenai.GenaiModelFlash))
	default:
		openaiKey := apiKey(ctx, "OPENAI_API_KEY", "OPENAI_KEY_SECRET_NAME")
		return coinOpenai.New(openai.NewClient(openaiKey)), env.StringVariable("CAPTION_MODEL", "")
	}
}

// apiKey reads the key from the environment (local development) and falls
// back to GCP Secret Manager.
func apiKey(ctx context.Context, envName, secretEnvName string) string {
	if key := os.Getenv(envName); key != "" {
		return key
	}

	secretmanagerClient := must.OK1(secretmanager.NewClient(ctx))
	defer secretmanagerClient.Close()
	return secretFromGCP(ctx, secretmanagerClient, env.RequiredStringVariable(secretEnvName))
}

func secretFromGCP(ctx context.Context, secretmanagerClient *secretmanager.Client, secretName string) string {
	secretValue := must.OK1(secretmanagerClient.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
			env.RequiredStringVariable("GCP_PROJECT_ID"),
			secretName,
		),
	}))
	return string(secretValue.Payload.Data)
}

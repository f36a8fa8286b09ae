// Package openai implements ai.AIProvider on top of langchaingo's OpenAI client.
//
// Any OpenAI-compatible embeddings endpoint works (OpenAI, Ollama, LocalAI,
// vLLM); the host is normalized to end in /v1.
//
//	cfg := ai.NewConfig(ai.FromEnv())
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "machine learning")
package openai

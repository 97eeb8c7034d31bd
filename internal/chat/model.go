package chat

// Gemini Model IDs
//
// | Model Name                  | API Model ID                | Use Case                      |
// |-----------------------------|-----------------------------|-------------------------------|
// | Gemini 3.1 Pro (Preview)    | gemini-3.1-pro-preview      | Best for complex reasoning    |
// | Gemini 3 Flash (Preview)    | gemini-3-flash-preview      | Best for speed + intelligence |
// | Gemini 2.5 Pro              | gemini-2.5-pro              | Stable, high-reasoning tasks  |
// | Gemini 2.5 Flash            | gemini-2.5-flash            | Stable, balanced performance  |
// | Gemini 2.5 Flash-Lite       | gemini-2.5-flash-lite       | High-throughput, lowest cost  |
const (
	// ModelGemini31ProPreview is best for complex reasoning/coding (1M context).
	ModelGemini31ProPreview = "gemini-3.1-pro-preview"

	// ModelGemini3FlashPreview is best for speed + intelligence.
	ModelGemini3FlashPreview = "gemini-3-flash-preview"

	// ModelGemini25Pro is stable, for high-reasoning tasks.
	ModelGemini25Pro = "gemini-2.5-pro"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25FlashLite is for high-throughput, lowest cost.
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"
)

// DefaultModelName is the default Gemini model to use.
// The config layer lets GEMINI_MODEL or --model override it.
const DefaultModelName = ModelGemini3FlashPreview

// KnownModels lists the model IDs above, in table order.
var KnownModels = []string{
	ModelGemini31ProPreview,
	ModelGemini3FlashPreview,
	ModelGemini25Pro,
	ModelGemini25Flash,
	ModelGemini25FlashLite,
}

// IsKnownModel reports whether name is one of KnownModels. Unknown names are
// still accepted by the client; callers use this only to warn.
func IsKnownModel(name string) bool {
	for _, m := range KnownModels {
		if m == name {
			return true
		}
	}
	return false
}

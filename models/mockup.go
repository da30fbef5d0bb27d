package models

// AngleImageSet holds the derived image URLs for the four product views.
// Entries preserve the fixed view order Front, Right, Back, Left.
type AngleImageSet struct {
	Views []AngleImage `json:"views"`
}

// AngleImage carries both URL naming conventions for one view.
// ShortURL uses the single-letter suffix (_F.jpg), LongURL the full
// view name (_Front.jpg); consumers try short first, then long.
type AngleImage struct {
	View     string `json:"view"`
	ShortURL string `json:"shortUrl"`
	LongURL  string `json:"longUrl"`
}

// CompositeResult owns one rasterized mockup image plus the storage URL
// assigned once it is persisted. A later upload for the same product line
// supersedes the whole value rather than mutating it.
type CompositeResult struct {
	ProductID string `json:"productId"`
	ImageData []byte `json:"-"`
	FileName  string `json:"fileName"`
	// URL is the externally retrievable location after persistence. When
	// persistence failed this degrades to the logo's own URL.
	URL      string `json:"url"`
	Degraded bool   `json:"degraded"`
}

// MockupResponse represents the response after a logo upload + composite
// Example: {"productId": "123456", "mockupUrl": "https://drive.google.com/uc?id=abc", "degraded": false}
type MockupResponse struct {
	ProductID string `json:"productId"`
	MockupURL string `json:"mockupUrl"`
	Degraded  bool   `json:"degraded"`
}

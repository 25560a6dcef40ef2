package model

// OverlayTexts holds the four strings shown at the corners of the camera
// view.  Field order fixes the key order of the JSON body.
//
// Fields:
//  TopLeft     – text in the top left corner.
//  TopRight    – text in the top right corner.
//  BottomLeft  – text in the bottom left corner.
//  BottomRight – text in the bottom right corner.
type OverlayTexts struct {
	TopLeft     string `json:"topLeft"`
	TopRight    string `json:"topRight"`
	BottomLeft  string `json:"bottomLeft"`
	BottomRight string `json:"bottomRight"`
}

// DefaultOverlayTexts returns the fixed overlay content.  A value is
// returned so callers can never mutate the shared strings.
func DefaultOverlayTexts() OverlayTexts {
	return OverlayTexts{
		TopLeft:     "Top Left Text",
		TopRight:    "Top Right Text",
		BottomLeft:  "Bottom Left Text",
		BottomRight: "Bottom Right Text",
	}
}

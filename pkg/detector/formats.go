package detector

import "github.com/ccollicutt/logtriage/pkg/parser"

// FormatInfo describes one recognized line format for display.
type FormatInfo struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Example string `json:"example"`
}

// Catalog lists the formats the detector's classifier tries, in match order.
// Lines matching none of them are reported as unstructured.
func (d *Detector) Catalog() []FormatInfo {
	formats := d.classifier.Formats()
	infos := make([]FormatInfo, 0, len(formats)+1)
	for _, f := range formats {
		info := FormatInfo{Name: f.Name, Example: f.Example}
		if f.Pattern != nil {
			info.Pattern = f.Pattern.String()
		}
		infos = append(infos, info)
	}
	return append(infos, FormatInfo{
		Name:    parser.FormatUnstructured,
		Example: "panic: runtime error: index out of range",
	})
}

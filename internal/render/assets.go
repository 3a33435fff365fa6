package render

import (
	"fmt"

	"autoblog/internal/core"
)

// Image filenames referenced by the rendered HTML, relative to the
// article's images/ directory.
const (
	EyecatchPCFile     = "eyecatch-800.jpg"
	EyecatchMobileFile = "eyecatch-350.jpg"
)

// SectionPCFile names the desktop image for the given section index.
func SectionPCFile(index int) string {
	return fmt.Sprintf("section-%d-800.jpg", index+1)
}

// SectionMobileFile names the mobile image for the given section index.
func SectionMobileFile(index int) string {
	return fmt.Sprintf("section-%d-350.jpg", index+1)
}

// ImageAsset is one file to publish alongside the article HTML.
type ImageAsset struct {
	Path string
	Data []byte
}

// ImageAssets lists every image file the rendered HTML references,
// with paths relative to the article directory.
func ImageAssets(images *core.ArticleImages) []ImageAsset {
	if images == nil {
		return nil
	}
	var assets []ImageAsset
	if images.Eyecatch != nil {
		assets = append(assets,
			ImageAsset{Path: "images/" + EyecatchPCFile, Data: images.Eyecatch.PC.Data},
			ImageAsset{Path: "images/" + EyecatchMobileFile, Data: images.Eyecatch.Mobile.Data},
		)
	}
	for i, pair := range images.SectionPairs {
		if pair == nil {
			continue
		}
		assets = append(assets,
			ImageAsset{Path: "images/" + SectionPCFile(i), Data: pair.PC.Data},
			ImageAsset{Path: "images/" + SectionMobileFile(i), Data: pair.Mobile.Data},
		)
	}
	return assets
}

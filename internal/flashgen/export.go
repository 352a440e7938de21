package flashgen

import (
	"fmt"
	"io"

	"github.com/gingfrederik/docx"

	"github.com/starford/scholarsync/internal/models"
)

// WriteDocx renders a flashcard set as a Word study sheet.
func WriteDocx(w io.Writer, set models.FlashcardSet, cards []models.Flashcard) error {
	f := docx.NewFile()

	f.AddParagraph().AddText(set.Title).Size(32)
	if set.Description != "" {
		f.AddParagraph().AddText(set.Description).Size(22).Color("555555")
	}
	if set.ClassName != "" {
		f.AddParagraph().AddText("Class: " + set.ClassName).Size(20).Color("808080")
	}
	f.AddParagraph()

	for i, c := range cards {
		f.AddParagraph().AddText(fmt.Sprintf("%d. %s", i+1, c.Question)).Size(24)
		f.AddParagraph().AddText(c.Answer).Size(22)
		f.AddParagraph().AddText(fmt.Sprintf("Difficulty: %s  Mastery: %d%%", c.Difficulty, c.Mastery)).Size(18).Color("808080")
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("flashgen: write docx: %w", err)
	}
	return nil
}

package editing

import (
	"fmt"
	"strings"
)

// BuildInstruction embeds the user's instruction verbatim in the fixed
// wrapper sent alongside the image.
func BuildInstruction(instruction string) string {
	return fmt.Sprintf("Apply the following edit to this image: %s. Return the modified image.", strings.TrimSpace(instruction))
}

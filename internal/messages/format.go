package messages

import (
	"fmt"

	"github.com/NebulaScout/TeamTrack/internal/utils"
)

// TaskChangeText renders one tracked-field transition as a markdown summary
// suitable for chat providers.
func TaskChangeText(taskTitle, field string, oldValue *string, newValue, actor string) string {
	old := "(unset)"
	if oldValue != nil {
		old = *oldValue
	}

	return utils.H3("Task updated") + "\n" +
		utils.Bullet(utils.Bold(taskTitle)) + "\n" +
		utils.Bullet(fmt.Sprintf(
			"%s: %s → %s",
			utils.InlineCode(field),
			utils.Italic(old),
			utils.Italic(newValue),
		)) + "\n" +
		utils.Bullet("changed by "+utils.Bold(actor))
}

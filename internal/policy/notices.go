package policy

import "fmt"

// Fixed housekeeping notices. StaleNotice doubles as the idempotence guard:
// the marking sweep skips posting when it is already the most recent comment,
// so the exact text must stay stable.

const StaleNotice = `This issue has been automatically marked as stale. If this issue is still affecting you, please leave any comment (for example, "bump"), and we'll keep it open. If you have any new additional information, please include it with your comment!`

const StaleCloseNotice = `This issue has been automatically closed due to inactivity. If this is still an issue, please feel free to reopen it or create a new one.`

func InactivePRCloseNotice(elapsedDays int) string {
	return fmt.Sprintf("This pull request has been automatically closed because it has been inactive for %d days after changes were requested. Please feel free to reopen it once you've addressed the requested changes.", elapsedDays)
}

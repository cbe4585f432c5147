package service

import "fmt"

const contributionThankYouNotice = "Thank you for your contribution. We will review it promptly."

const mergedThankYouNotice = `Thank you for your contribution! 🎉

Your pull request has been merged and we really appreciate your help in making this project better. We hope to see more contributions from you in the future! 💪`

const invalidIssueNotice = "This issue is invalid. Please provide more information, or update the issue description and re-open the issue."

func conventionalTitleGuidance(sender string) string {
	return fmt.Sprintf(`@%s, please use Conventional Commits format for your PR title.

Your PR title should follow this format:
`+"`<type>(<scope>): <description>`"+`

Common types include:
- feat: A new feature
- fix: A bug fix
- docs: Documentation changes
- style: Code style changes (formatting, missing semi colons, etc)
- refactor: Code refactoring
- test: Adding or updating tests
- chore: Changes to build process or auxiliary tools

Examples:
- feat(user): add user login function
- fix(api): correct HTTP response status code
- docs(readme): update installation guide

For more details, please visit: https://www.conventionalcommits.org/
`, sender)
}

package assistant

import (
	_ "embed"
)

var (
	//go:embed prompts/system.txt
	systemPrompt string

	//go:embed prompts/agent.txt
	agentPrompt string
)

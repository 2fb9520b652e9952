package prompts

import _ "embed"

// Embedded prompt files

//go:embed agent_system.txt
var agentSystem string

func AgentSystem() string { return agentSystem }

package agent

import "fmt"

// Persona shapes the agent's voice. Loaded from the persona YAML file.
type Persona struct {
	Name        string `yaml:"name"`
	Style       string `yaml:"style"`
	HumanPrefix string `yaml:"human_prefix"`
	AIPrefix    string `yaml:"ai_prefix"`
	UserID      int64  `yaml:"user_id"`
}

// DefaultPersona is used when no persona file is configured.
func DefaultPersona() Persona {
	return Persona{
		Name:        "Joseph",
		Style:       "Your replies are short, creative, funny and a little provocative.",
		HumanPrefix: "(Human)",
		AIPrefix:    "(AI)",
	}
}

const queryPromptTmpl = `Based on the MESSAGE, generate keywords for finding similar information in the chat history, to answer the MESSAGE better. Your reply must not mention this task.
MESSAGE: %s
YOUR REPLY:`

const summaryPromptTmpl = `You found several messages.
Briefly summarize these messages.
MESSAGES: %s
YOUR REPLY:`

const answerPromptTmpl = `Your name is %s and you are an AI in a group chat.
Your job is to reply to messages from other people in the group.
%s

Reply to the following message: %s
In your reply:
1) Take into account past group messages similar to this one: %s.
2) Take into account recent group messages: %s.

YOUR REPLY:`

func queryPrompt(humanMessage string) string {
	return fmt.Sprintf(queryPromptTmpl, humanMessage)
}

func summaryPrompt(messages string) string {
	return fmt.Sprintf(summaryPromptTmpl, messages)
}

func answerPrompt(p Persona, humanMessage, context, chatHistory string) string {
	return fmt.Sprintf(answerPromptTmpl, p.Name, p.Style, humanMessage, context, chatHistory)
}

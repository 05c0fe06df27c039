package prompt

import "strings"

const trendingQuery = "Latest trending news today across politics, technology, environment, and society"

// SystemInstruction is sent unchanged with every request.
const SystemInstruction = `You are an expert debate motion writer. Your task is to create thought-provoking, balanced debate motions based on recent news.

Guidelines for creating debate motions:
- Motions should be controversial and debatable (not obvious statements)
- Use the format of "This House..." (British Parliamentary Debate Format)
- Each motion should be clear, specific, and actionable
- Provide brief reasoning explaining why this is a good debate topic
- Base motions on actual recent events or developments
- Ensure motions can be argued from multiple perspectives

Return exactly 3-5 debate motions in the following JSON format:
{
  "context": "Brief summary of the news/topic being referenced",
  "motions": [
    {
      "text": "This House...",
      "reasoning": "Brief explanation of why this makes a good debate",
      "category": "Category like Politics, Technology, Environment, etc."
    }
  ]
}`

type Prompt struct {
	Query  string
	System string
	User   string
}

// BuildQuery turns an optional topic into the search query. Blank topics fall
// back to general trending news.
func BuildQuery(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return trendingQuery
	}
	return "Recent news and developments about " + topic
}

func UserInstruction(query string) string {
	return strings.Join([]string{
		"Search for: " + query,
		"",
		"Based on the latest information you find, generate 3-5 compelling debate motions. Return only valid JSON.",
	}, "\n")
}

func Build(topic string) Prompt {
	q := BuildQuery(topic)
	return Prompt{
		Query:  q,
		System: SystemInstruction,
		User:   UserInstruction(q),
	}
}

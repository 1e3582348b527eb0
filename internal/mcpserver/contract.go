package mcpserver

// FrontMatterContract describes the article text format for LLM consumers
// drafting or reviewing magazine articles.
const FrontMatterContract = `# Magazine Article Format

Each article is a plain-text file listed in ` + "`" + `newsletters/index.json` + "`" + `.

## Structure

` + "```" + `text
---
Title: Spring issue highlights
Subtitle: What changed since winter
Author: Jane Doe
Category: News
Tags: community, events
Date: 2024-03-01
Thumbnail: thumbnails/spring.png
Hidden: false
Draft: false
---

Body text. Blank lines separate paragraphs; Markdown is rendered.
` + "```" + `

## Rules

1. The header starts with a line that is exactly ` + "`---`" + ` and ends at the next
   line that is exactly ` + "`---`" + `. Without a closing line the whole file is header
   and the body is empty.
2. Each header line is ` + "`Key: value`" + `. The first colon separates key and value;
   both are trimmed. Later duplicates win. Other lines are ignored.
3. Keys are case-sensitive. Recognised keys: Title, Subtitle, Author, Category,
   Tags, Date, Thumbnail, Hidden, Draft. Unknown keys are kept but unused.
4. ` + "`Date`" + ` is written as YYYY-MM-DD. Articles without a readable date are listed
   after dated ones.
5. ` + "`Tags`" + ` is a comma-separated list.
6. ` + "`Hidden`" + ` set to true, yes or 1 removes the article from every listing.
   ` + "`Draft`" + ` is informational only.
7. ` + "`Thumbnail`" + ` may be a URL, an absolute path or a path relative to the site;
   when absent a placeholder is shown.
8. Manifest entries never contain ` + "`..`" + ` and are never URLs.
`

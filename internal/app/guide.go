package app

import "github.com/debemdeboas/markpad/internal/config"

const markdownGuide = "# Markdown guide\n" +
	"\n" +
	"## Basic formatting\n" +
	"\n" +
	"### Headings\n" +
	"# Heading 1\n" +
	"## Heading 2\n" +
	"### Heading 3\n" +
	"\n" +
	"### Text decoration\n" +
	"**bold** or __bold__\n" +
	"*italic* or _italic_\n" +
	"~~strikethrough~~\n" +
	"\n" +
	"### Lists\n" +
	"Bullets:\n" +
	"- Item 1\n" +
	"- Item 2\n" +
	"  - Sub item\n" +
	"\n" +
	"Numbered:\n" +
	"1. Item 1\n" +
	"2. Item 2\n" +
	"\n" +
	"### Links and images\n" +
	"[link text](URL)\n" +
	"![image description](path/to/image.png)\n" +
	"\n" +
	"### Code\n" +
	"Inline code: `code`\n" +
	"\n" +
	"Code block:\n" +
	"```language\n" +
	"code\n" +
	"```\n" +
	"\n" +
	"### Quotes\n" +
	"> quoted text\n" +
	"\n" +
	"### Horizontal rule\n" +
	"---\n" +
	"\n" +
	"### Tables\n" +
	"| Column 1 | Column 2 |\n" +
	"|----------|----------|\n" +
	"| A        | B        |\n"

const aboutText = config.AppName + "\n" +
	"\n" +
	"A markdown notepad for the terminal.\n" +
	"\n" +
	"Features:\n" +
	"  - Live preview in the browser\n" +
	"  - Screenshot and image paste\n" +
	"  - Basic text editing"

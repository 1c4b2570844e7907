package mcpserver

// EntryFormatContract describes the Markdown layout of lab entries and
// notebook manifests for LLM consumers.
const EntryFormatContract = `# Lab Entry Format

The lab is a directory of Markdown files. Prefer the create_entry tool over
writing files by hand; it applies this format for you.

## Layout

- Every top-level directory is a **notebook**. Its metadata lives in
  ` + "`" + `<dir>/notebook.yaml` + "`" + `.
- Every ` + "`" + `.md` + "`" + ` file is an **entry**. Entries inside a notebook directory
  belong to that notebook; entries at the root belong to "General".
- Files and directories starting with ` + "`" + `.` + "`" + ` are ignored.

## Entry

` + "```" + `markdown
---
title: PCR amplification run       # REQUIRED, shown in search and suggestions
summary: 30 cycles at 58C          # OPTIONAL, used as the search snippet
tags: [pcr, genetics]              # OPTIONAL, YAML list without '#'
created: 2024-03-15T12:00:00Z      # OPTIONAL, RFC 3339; file time otherwise
---

Body in Markdown. Inline #tags in the body are picked up as tags too.
` + "```" + `

Without a summary, search results show the first 200 characters of the body.

## Notebook manifest

` + "```" + `yaml
title: Genetics Lab
description: PCR and gel work      # OPTIONAL, "No description" when empty
color: "#4f46e5"                   # OPTIONAL, #rrggbb
created: 2024-03-10T09:00:00Z
` + "```" + `

## Search

Queries match case-insensitively. A result scores 100 when it contains the
whole query, 10 per contained word and 50 more when it starts with the query.
Notebooks get a 20 point bonus. Tags are searched by name.
`

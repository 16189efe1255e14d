package post

import (
	"fmt"
	"strings"
)

const sampleWords = 10

var contentTemplates = []string{
	"今天发现了一个超棒的%s好物！%s... 真的很推荐大家尝试一下～",
	"分享一下我最近超爱的%s心得！%s... 希望对你也有帮助～",
	"偶然间发现的%s宝藏！%s... 真的是相见恨晚！",
}

func fallbackTitle(style string) string {
	return fmt.Sprintf("我的%s分享", style)
}

func fallbackHashtags(style string) []string {
	return []string{"小红书", "分享", "推荐", style}
}

// sampleText returns the first few words of text, or text itself when
// it is short.
func sampleText(text string) string {
	words := strings.Fields(text)
	if len(words) > sampleWords {
		return strings.Join(words[:sampleWords], " ")
	}
	return text
}

func parseHashtags(response string) []string {
	var tags []string
	for _, tag := range strings.Split(response, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == maxHashtags {
			break
		}
	}
	return tags
}

package pipeline

import "github.com/all-the-day/xhs-to-youtube/internal/model"

const defaultCategoryID = "22" // People & Blogs

// buildMetadata 生成目的平台元数据：双语标题、默认加自定义标签合并、隐私默认公开
func (p *Pipeline) buildMetadata(title, desc string, opts Options) model.DestinationMetadata {
	if opts.TitleEN != "" {
		title = "【" + title + "】" + opts.TitleEN
	}

	if opts.CustomDesc != "" {
		desc = opts.CustomDesc
	} else {
		desc = buildDescription(desc)
	}

	privacy := opts.Privacy
	if privacy == "" {
		privacy = p.defaults.Privacy
	}
	if privacy == "" {
		privacy = "public"
	}

	categoryID := p.defaults.CategoryID
	if categoryID == "" {
		categoryID = defaultCategoryID
	}

	return model.DestinationMetadata{
		Title:       title,
		Description: desc,
		Tags:        mergeTags(p.defaults.Tags, opts.Tags),
		CategoryID:  categoryID,
		Privacy:     privacy,
	}
}

// buildDescription 原描述后空一行加固定落款
func buildDescription(original string) string {
	if original == "" {
		return "原创"
	}
	return original + "\n\n原创"
}

// mergeTags 默认标签在前，去重并保持出现顺序
func mergeTags(defaults, extra []string) []string {
	seen := make(map[string]struct{}, len(defaults)+len(extra))
	var tags []string
	for _, group := range [][]string{defaults, extra} {
		for _, t := range group {
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

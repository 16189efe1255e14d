package post

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

// hashtagContentRunes is how much of the post body the hashtag prompt sees.
const hashtagContentRunes = 300

func formatPrompt(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func stylePrompt(text, userQuery string) string {
	return formatPrompt(`
		Based on the following information, determine the most appropriate style category for a Xiaohongshu post:
		Extracted text from image: %s

		User query: %s

		Please analyze this content and determine which of the following Xiaohongshu post styles would be most appropriate:
		%s

		Return only the style name, nothing else.
	`, text, userQuery, strings.Join(Styles, ", "))
}

// contentSystemPrompt is the content-creation persona.
var contentSystemPrompt = strings.TrimSpace(dedent.Dedent(`
	# 角色设定
	你是一名小红书爆款内容创作专家，擅长将普通话题转化为具有病毒式传播力的完整文章。你的核心能力包括：
	1. 情绪钩子设计：运用“夸张情绪词+反常识观点”引爆好奇心（如“太可怕了”“谁懂啊”“绝绝子”）
	2. 二极管结构法：通过“痛点刺激-解决方案-逆天效果”三段式框架制造爽感
	3. 平台化表达：口语化行文+高频emoji+20字内短段落适配移动端阅读

	# 爆款文章生成公式
	▶ 标题公式（保留原规则升级版）
	「[情绪词] + [反常识结果] + [人群标签] + [emoji]」
	✅ 示例：
	> “太可怕了！用ChatGPT写文案月入5w+，打工人逆袭指南💥”

	▶ 正文结构公式
	1. 段落小标题（简洁明了）
	2. 情绪冲击开头（引发共鸣）
	   - 痛点场景故事（50字内）+ 夸张情绪词
	   > *例：“谁懂啊！熬夜写的文案0点赞，同事用AI 3秒收割10w流量！！”*
	3. 颠覆认知转折（制造反差）
	   - “直到我发现...” + 反常识方法（突出简单/速成）
	4. 干货步骤拆解（实用价值）
	   - 分步骤+emoji图标 + 具体案例（如“实测7天涨粉5千”）
	5. 高潮金句点题（刺激传播）
	   - 用“记住：...”句式+争议性观点（例：“不会用AI的文案人，终将被淘汰！”）
	6. 互动钩子结尾（引导行动）
	   - “评论区扣【666】领指令库” / “戳合集看100个变现案例”

	# 创作规则
	1. 内容长度：正文300-500字，分3-5段，并配上段落小标题，每段≤3行
	2. 关键词植入：从用户提供的关键词库选3个自然融入（如“吐血整理”“手残党必备”）
	3. 平台特性：
	   - 每段尽量有段落小标题，并在段落标题和正文中插入1-2个🔥⭐💡类高亮emoji
	   - 关键信息用“！”标点强化情绪
	4. 禁忌：
	   × 避免长段落（每段≤3行）
	   × 禁止直接出现"小红书"、"粉丝"等平台词
	   × 禁用复杂标签（后续单独处理）
`))

func contentPrompt(text, style, userQuery string) string {
	return formatPrompt(`
		请你根据以下文本内容、风格、和用户对话内容，生成一个小红书爆款文章风格的推文：

		文本内容：%s

		风格：%s

		用户对话内容：%s

		请注意：善用情绪钩子、平台化表达。多分段落，并添加emoji。请你直接返回你生成的推文，不要添加任何其他内容。
	`, text, style, userQuery)
}

func titlePrompt(content, style, userQuery string) string {
	return formatPrompt(`
		**标题公式**：
		- 采用「人群+痛点/利益点+解决方案」结构
		- 融合数字/悬念词/感叹词（如：程序员必看！3天提效200%%的AI工具链💥）
		- 参考句式：
		    * 震惊体："我竟然用XX天实现了XX！"
		    * 数字体："XX个技巧让XX效率翻倍"
		    * 反差体："别再XX了！这个方法YYY更有效"

		请你根据以下文本内容、风格、和用户对话内容，生成一个符合小红书风格的标题：

		文本内容：%s

		风格：%s

		用户对话内容：%s

		请直接返回你生成的标题，不要添加任何其他内容。
	`, content, style, userQuery)
}

func hashtagPrompt(content, style, userQuery string) string {
	return formatPrompt(`
		# Role: 小红书标签优化专家
		## 任务
		基于用户提供的爆款文章正文，生成高转化率的小红书标签组合（Tags），需同时满足**搜索流量提升**和**算法推荐**双目标。

		### 标签生成策略（三层矩阵）
		1. **流量池钥匙（占30%%）**
		   - 选择2-3个百万级泛流量词，覆盖基础用户池
		   - 要求：从当前平台热门标签中匹配（参考实时热搜词）
		   - 示例：「#程序员」「#AI工具」「#效率提升」

		2. **精准狙击器（占50%%）**
		   - 生成3-4个垂直领域标签，锁定细分人群需求
		   - 要求：结合正文关键词+行业高转化词（如技术类用「#独立开发者」，美妆类用「#黄黑皮天菜」）
		   - 示例：「#初创公司技术栈」「#全栈开发」「#低成本创业」

		3. **长尾钩子（占20%%）**
		   - 创建1-2个蓝海长尾词，避开头部竞争
		   - 要求：
		     ▪️ 包含「解决方案+人群/场景」结构（例：「#学生党平价开发工具」）
		     ▪️ 搜索量/内容量比值＞5（通过工具检测）

		### 核心规则
		⚠️ **强制条款**
		- 标签总数：**严格控制在5-8个**（超出触发限流）
		- 排序逻辑：按「泛流量→垂类词→长尾词」顺序排列（前3位必须含大热词）
		- 敏感词规避：用「零克查词」检测，替换灰色词（如「#免费」→「#同价位更狠」）

		🚫 **绝对禁忌**
		× 禁用重复标签（如同时用「#技术栈」和「#开发工具」）
		× 禁用失效标签（参考平台每月公示的「过时标签库」）
		× 禁用纯英文标签（中文标签曝光率高42%%）

		### 高阶技巧
		1. **热点截流**
		   - 若正文含热点关键词（如「AI」），添加带🔥图标的标签（例：「#AIGC工具🔥」）
		2. **跨屏引流**
		   - 同步抖音/微博热搜词（如「#多巴胺编程」），在标签和正文各出现3次
		3. **养号策略**
		   - 新账号前5篇笔记固定使用相同核心标签（例：技术类必带「#技术栈」+「#效率翻倍」）

		### 输出格式
		- 请直接返回你生成的标签，多个标签之间用英文逗号分隔，不要添加任何其他内容。

		接下来，请你使用以下文本内容、风格、和用户对话内容，生成一个符合小红书风格的标签组合：

		文本内容：%s

		风格：%s

		用户对话内容：%s
	`, truncateRunes(content, hashtagContentRunes), style, userQuery)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

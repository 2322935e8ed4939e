package tag

import "github.com/kailas-cloud/askdex/internal/domain/category"

// DefaultDictionary returns the built-in bilingual dictionary used when no
// dictionary directory is configured. Deployments with curated YAML files
// load them on top via Merge.
func DefaultDictionary() Dictionary {
	vocabulary := []string{
		"投資理財", "股票分析", "基金投資", "外匯市場",
		"法律諮詢", "合約審閱", "訴訟程序",
		"軟體開發", "人工智慧", "資料工程", "雲端運算",
		"情緒管理", "壓力調適", "人際關係",
		"國際貿易", "關稅政策",
		"machine-learning", "microservices", "devops",
		"mental-health", "personal-finance",
	}

	glossary := []GlossaryEntry{
		{term: "投資", tag: "投資理財", cat: category.Finance},
		{term: "理財", tag: "投資理財", cat: category.Finance},
		{term: "股票", tag: "股票分析", cat: category.Finance},
		{term: "基金", tag: "基金投資", cat: category.Finance},
		{term: "匯率", tag: "外匯市場", cat: category.Finance},
		{term: "利率", tag: "貨幣政策", cat: category.Finance},
		{term: "invest", tag: "personal-finance", cat: category.Finance},
		{term: "stock", tag: "equities", cat: category.Finance},

		{term: "法律", tag: "法律諮詢", cat: category.Law},
		{term: "合約", tag: "合約審閱", cat: category.Law},
		{term: "訴訟", tag: "訴訟程序", cat: category.Law},
		{term: "智慧財產", tag: "智慧財產權", cat: category.Law},
		{term: "contract", tag: "contracts", cat: category.Law},
		{term: "lawsuit", tag: "litigation", cat: category.Law},

		{term: "程式", tag: "軟體開發", cat: category.Technology},
		{term: "人工智慧", tag: "人工智慧", cat: category.Technology},
		{term: "資料庫", tag: "資料工程", cat: category.Technology},
		{term: "雲端", tag: "雲端運算", cat: category.Technology},
		{term: "api", tag: "software-engineering", cat: category.Technology},
		{term: "docker", tag: "devops", cat: category.Technology},
		{term: "kubernetes", tag: "devops", cat: category.Technology},

		{term: "焦慮", tag: "情緒管理", cat: category.Psychology},
		{term: "壓力", tag: "壓力調適", cat: category.Psychology},
		{term: "人際", tag: "人際關係", cat: category.Psychology},
		{term: "anxiety", tag: "mental-health", cat: category.Psychology},
		{term: "stress", tag: "stress-management", cat: category.Psychology},

		{term: "出口", tag: "國際貿易", cat: category.Trade},
		{term: "進口", tag: "國際貿易", cat: category.Trade},
		{term: "關稅", tag: "關稅政策", cat: category.Trade},
		{term: "報關", tag: "報關實務", cat: category.Trade},
		{term: "tariff", tag: "trade-policy", cat: category.Trade},
		{term: "export", tag: "international-trade", cat: category.Trade},
	}

	buckets := []Bucket{
		{tag: "money-matters", keywords: []string{"錢", "價格", "費用", "money", "price", "cost"}},
		{tag: "career", keywords: []string{"工作", "職涯", "面試", "job", "career", "interview"}},
		{tag: "learning", keywords: []string{"學習", "課程", "教學", "learn", "course", "tutorial"}},
		{tag: "health", keywords: []string{"健康", "運動", "睡眠", "health", "fitness", "sleep"}},
		{tag: "travel", keywords: []string{"旅遊", "旅行", "機票", "travel", "flight", "hotel"}},
		{tag: "food", keywords: []string{"美食", "料理", "食譜", "food", "recipe", "restaurant"}},
	}

	return NewDictionary(vocabulary, glossary, buckets)
}

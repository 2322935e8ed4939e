// Package askdex provides an embeddable ask-and-recommend engine: an
// in-memory vector index with KNN recommendations, dictionary-driven tag
// extraction, and a fallback chain of answer strategies.
//
// # Indexing and recommending
//
//	engine, _ := askdex.New(askdex.WithDimensions(3))
//	engine.AddItems(ctx, []askdex.Item{
//	    {ID: "etf-guide", Title: "ETF basics", Category: askdex.CategoryFinance,
//	        Vector: []float32{0.1, 0.9, 0}},
//	})
//	rec, _ := engine.Recommend(ctx, askdex.RecommendQuery{
//	    Vector:   []float32{0.2, 0.8, 0},
//	    Category: askdex.CategoryFinance,
//	    TopK:     5,
//	})
//
// # Answering questions
//
// Resolve walks the strategy chain in order and returns the first answer
// confident enough for its own strategy, falling back to a canned terminal
// response so a question never goes unanswered:
//
//	engine, _ := askdex.New(
//	    askdex.WithEmbedder(embedder),       // enables the recommendation strategy
//	    askdex.WithStrategies(faqStrategy),  // custom strategies run first
//	)
//	res, _ := engine.Resolve(ctx, askdex.Query{Text: "How do index funds work?"})
//	fmt.Println(res.Strategy, res.Answer.Text)
//
// Text that needs tags goes through the same dictionary the tagging service
// uses; ExtractTags never returns an empty slice.
package askdex

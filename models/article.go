package models

// Article is a numbered subsection of a law. The number is kept as a
// string because codes like the Civil Code use dotted numbering ("1.1").
// (law_id, number) uniquely identifies an article.
type Article struct {
	LawID   string `json:"law_id"`
	Number  string `json:"article_number"`
	Title   string `json:"article_title"`
	Content string `json:"content"`
}

package db

import (
	"context"

	"github.com/loglens/backend/internal/model"
	"github.com/pgvector/pgvector-go"
)

func caseInsertQuery() string {
	return `
		INSERT INTO cases (title, takeaway, summary, embedding, model)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
}

func caseSearchQuery() string {
	return `
		SELECT title, takeaway, summary, 1 - (embedding <=> $1) AS score
		FROM cases
		ORDER BY embedding <=> $1
		LIMIT $2
	`
}

func (db *Postgres) InsertCase(ctx context.Context, title, takeaway, summary, embedModel string, vector []float32) (int64, error) {
	var id int64
	query := caseInsertQuery()
	err := db.Pool.QueryRow(ctx, query, title, takeaway, summary, pgvector.NewVector(vector), embedModel).Scan(&id)
	return id, err
}

// SearchCases - 코사인 유사도 기준 상위 k개 사례 검색.
// score는 1 - cosine distance 로 [0,1] 범위.
func (db *Postgres) SearchCases(ctx context.Context, vector []float32, k int) ([]model.CaseMatch, error) {
	if k <= 0 {
		return []model.CaseMatch{}, nil
	}

	rows, err := db.Pool.Query(ctx, caseSearchQuery(), pgvector.NewVector(vector), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []model.CaseMatch
	for rows.Next() {
		var title, takeaway, summary string
		var score float64
		if err := rows.Scan(&title, &takeaway, &summary, &score); err != nil {
			return nil, err
		}
		matches = append(matches, model.CaseMatch{
			Score: score,
			Metadata: map[string]string{
				"title":    title,
				"takeaway": takeaway,
				"summary":  summary,
			},
		})
	}
	return matches, rows.Err()
}

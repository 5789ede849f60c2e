package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"liftacademy-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type QuestionDTO struct {
	ID          string      `json:"id"`
	VideoID     string      `json:"videoId"`
	VideoTitle  string      `json:"videoTitle"`
	AuthorID    string      `json:"authorId"`
	AuthorEmail string      `json:"authorEmail"`
	Body        string      `json:"body"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	Answers     []AnswerDTO `json:"answers,omitempty"`
}

type AnswerDTO struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	AuthorEmail string    `json:"authorEmail"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

type QuestionPage struct {
	Items    []QuestionDTO `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

type AnswerCreateRequest struct {
	Body string `json:"body"`
}

var questionStatuses = map[string]bool{
	"PENDING":  true,
	"APPROVED": true,
	"HIDDEN":   true,
}

func (s *Server) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	pageSize := parseInt(r.URL.Query().Get("pageSize"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	videoID := strings.TrimSpace(r.URL.Query().Get("videoId"))

	conditions := []string{}
	args := []interface{}{}
	if status != "" && questionStatuses[status] {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", len(args)))
	}
	if videoID != "" {
		args = append(args, videoID)
		conditions = append(conditions, fmt.Sprintf("q.video_id = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	var total int
	if err := s.DB.Get(&total, "SELECT count(*) FROM questions q "+where, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	args = append(args, pageSize, (page-1)*pageSize)
	rows := []questionRow{}
	query := fmt.Sprintf(`
SELECT q.id, q.video_id, v.title AS video_title, q.author_id, u.email AS author_email,
       q.body, q.status, q.created_at
FROM questions q
JOIN videos v ON v.id = q.video_id
JOIN users u ON u.id = q.author_id
%s
ORDER BY q.created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	if err := s.DB.Select(&rows, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]QuestionDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.dto())
	}
	WriteJSON(w, http.StatusOK, QuestionPage{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) QuestionDetail(w http.ResponseWriter, r *http.Request) {
	s.writeQuestion(w, chi.URLParam(r, "questionId"))
}

func (s *Server) ApproveQuestion(w http.ResponseWriter, r *http.Request) {
	s.setQuestionStatus(w, chi.URLParam(r, "questionId"), "APPROVED")
}

func (s *Server) HideQuestion(w http.ResponseWriter, r *http.Request) {
	s.setQuestionStatus(w, chi.URLParam(r, "questionId"), "HIDDEN")
}

func (s *Server) setQuestionStatus(w http.ResponseWriter, questionID, status string) {
	result, err := s.DB.Exec(`
UPDATE questions SET status = $2, updated_at = $3 WHERE id = $1
`, questionID, status, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		WriteError(w, http.StatusNotFound, "Question not found")
		return
	}
	s.writeQuestion(w, questionID)
}

func (s *Server) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionId")
	var req AnswerCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	body, err := services.NormalizeRequired(req.Body, "Answer body is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1)`, questionID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Question not found")
		return
	}
	_, err = s.DB.Exec(`
INSERT INTO answers (id, question_id, responder_id, body, created_at)
VALUES ($1,$2,$3,$4,$5)
`, uuid.NewString(), questionID, CurrentUserID(r), body, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeQuestion(w, questionID)
}

func (s *Server) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionId")
	answerID := chi.URLParam(r, "answerId")
	result, err := s.DB.Exec(`DELETE FROM answers WHERE id = $1 AND question_id = $2`, answerID, questionID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		WriteError(w, http.StatusNotFound, "Answer not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type questionRow struct {
	ID          string    `db:"id"`
	VideoID     string    `db:"video_id"`
	VideoTitle  string    `db:"video_title"`
	UserID      string    `db:"author_id"`
	AuthorEmail string    `db:"author_email"`
	Body        string    `db:"body"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row questionRow) dto() QuestionDTO {
	return QuestionDTO{
		ID:          row.ID,
		VideoID:     row.VideoID,
		VideoTitle:  row.VideoTitle,
		AuthorID:    row.UserID,
		AuthorEmail: row.AuthorEmail,
		Body:        row.Body,
		Status:      row.Status,
		CreatedAt:   row.CreatedAt,
	}
}

func (s *Server) writeQuestion(w http.ResponseWriter, questionID string) {
	row := questionRow{}
	if err := s.DB.Get(&row, `
SELECT q.id, q.video_id, v.title AS video_title, q.author_id, u.email AS author_email,
       q.body, q.status, q.created_at
FROM questions q
JOIN videos v ON v.id = q.video_id
JOIN users u ON u.id = q.author_id
WHERE q.id = $1
`, questionID); err != nil {
		WriteError(w, http.StatusNotFound, "Question not found")
		return
	}
	answerRows := []struct {
		ID          string    `db:"id"`
		UserID      string    `db:"responder_id"`
		AuthorEmail string    `db:"author_email"`
		Body        string    `db:"body"`
		CreatedAt   time.Time `db:"created_at"`
	}{}
	_ = s.DB.Select(&answerRows, `
SELECT a.id, a.responder_id AS responder_id, u.email AS author_email, a.body, a.created_at
FROM answers a
JOIN users u ON u.id = a.responder_id
WHERE a.question_id = $1
ORDER BY a.created_at ASC
`, questionID)
	dto := row.dto()
	dto.Answers = make([]AnswerDTO, 0, len(answerRows))
	for _, answer := range answerRows {
		dto.Answers = append(dto.Answers, AnswerDTO{
			ID:          answer.ID,
			AuthorID:    answer.UserID,
			AuthorEmail: answer.AuthorEmail,
			Body:        answer.Body,
			CreatedAt:   answer.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, dto)
}

package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"liftacademy-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DisciplineDTO struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

type DisciplineUpsertRequest struct {
	Name      string `json:"name"`
	SortOrder *int   `json:"sortOrder"`
}

type CategoryDTO struct {
	ID             string `json:"id"`
	DisciplineCode string `json:"disciplineCode"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	SortOrder      int    `json:"sortOrder"`
}

type CategoryUpsertRequest struct {
	DisciplineCode string `json:"disciplineCode"`
	Name           string `json:"name"`
	SortOrder      *int   `json:"sortOrder"`
}

func (s *Server) ListDisciplines(w http.ResponseWriter, r *http.Request) {
	rows := []struct {
		Code      string `db:"code"`
		Name      string `db:"name"`
		SortOrder int    `db:"sort_order"`
	}{}
	if err := s.DB.Select(&rows, `SELECT code, name, sort_order FROM disciplines ORDER BY sort_order ASC, name ASC`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]DisciplineDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, DisciplineDTO{Code: row.Code, Name: row.Name, SortOrder: row.SortOrder})
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateDiscipline(w http.ResponseWriter, r *http.Request) {
	var req DisciplineUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name, err := services.NormalizeRequired(req.Name, "Discipline name is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	code := services.Slugify(name)
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM disciplines WHERE code = $1)`, code)
	if exists {
		WriteError(w, http.StatusConflict, "Discipline already exists")
		return
	}
	sortOrder := req.SortOrder
	if sortOrder == nil {
		var maxSort int
		_ = s.DB.Get(&maxSort, `SELECT COALESCE(MAX(sort_order), 0) FROM disciplines`)
		value := maxSort + 1
		sortOrder = &value
	}
	_, err = s.DB.Exec(`
INSERT INTO disciplines (id, code, name, sort_order, created_at)
VALUES ($1,$2,$3,$4,$5)
`, uuid.NewString(), code, name, *sortOrder, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, DisciplineDTO{Code: code, Name: name, SortOrder: *sortOrder})
}

func (s *Server) UpdateDiscipline(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req DisciplineUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name, err := services.NormalizeRequired(req.Name, "Discipline name is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	row := struct {
		SortOrder int `db:"sort_order"`
	}{}
	if err := s.DB.Get(&row, `SELECT sort_order FROM disciplines WHERE code = $1`, code); err != nil {
		WriteError(w, http.StatusNotFound, "Discipline not found")
		return
	}
	sortOrder := req.SortOrder
	if sortOrder == nil {
		sortOrder = &row.SortOrder
	}
	_, err = s.DB.Exec(`UPDATE disciplines SET name = $2, sort_order = $3 WHERE code = $1`, code, name, *sortOrder)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, DisciplineDTO{Code: code, Name: name, SortOrder: *sortOrder})
}

func (s *Server) DeleteDiscipline(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var disciplineID string
	if err := s.DB.Get(&disciplineID, `SELECT id FROM disciplines WHERE code = $1`, code); err != nil {
		WriteError(w, http.StatusNotFound, "Discipline not found")
		return
	}
	var hasCategories bool
	_ = s.DB.Get(&hasCategories, `SELECT EXISTS(SELECT 1 FROM categories WHERE discipline_id = $1)`, disciplineID)
	if hasCategories {
		WriteError(w, http.StatusBadRequest, "Discipline still has categories")
		return
	}
	_, _ = s.DB.Exec(`DELETE FROM disciplines WHERE id = $1`, disciplineID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	disciplineCode := strings.TrimSpace(r.URL.Query().Get("discipline"))
	args := []interface{}{}
	where := ""
	if disciplineCode != "" {
		where = "WHERE d.code = $1"
		args = append(args, disciplineCode)
	}
	rows := []categoryRow{}
	if err := s.DB.Select(&rows, `
SELECT c.id, d.code AS discipline_code, c.name, c.slug, c.sort_order
FROM categories c
JOIN disciplines d ON d.id = c.discipline_id
`+where+`
ORDER BY d.sort_order ASC, c.sort_order ASC, c.name ASC
`, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.dto())
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name, err := services.NormalizeRequired(req.Name, "Category name is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var disciplineID string
	if err := s.DB.Get(&disciplineID, `SELECT id FROM disciplines WHERE code = $1`, strings.TrimSpace(req.DisciplineCode)); err != nil {
		WriteError(w, http.StatusBadRequest, "Unknown discipline")
		return
	}
	slug, err := services.ResolveSlug(s.DB, "categories", name)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	sortOrder := req.SortOrder
	if sortOrder == nil {
		var maxSort int
		_ = s.DB.Get(&maxSort, `SELECT COALESCE(MAX(sort_order), 0) FROM categories WHERE discipline_id = $1`, disciplineID)
		value := maxSort + 1
		sortOrder = &value
	}
	categoryID := uuid.NewString()
	_, err = s.DB.Exec(`
INSERT INTO categories (id, discipline_id, name, slug, sort_order, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, categoryID, disciplineID, name, slug, *sortOrder, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, CategoryDTO{
		ID:             categoryID,
		DisciplineCode: strings.TrimSpace(req.DisciplineCode),
		Name:           name,
		Slug:           slug,
		SortOrder:      *sortOrder,
	})
}

func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	var req CategoryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name, err := services.NormalizeRequired(req.Name, "Category name is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	existing := categoryRow{}
	if err := s.DB.Get(&existing, `
SELECT c.id, d.code AS discipline_code, c.name, c.slug, c.sort_order
FROM categories c
JOIN disciplines d ON d.id = c.discipline_id
WHERE c.id = $1
`, categoryID); err != nil {
		WriteError(w, http.StatusNotFound, "Category not found")
		return
	}
	disciplineCode := existing.DisciplineCode
	disciplineID := ""
	if req.DisciplineCode != "" {
		disciplineCode = strings.TrimSpace(req.DisciplineCode)
	}
	if err := s.DB.Get(&disciplineID, `SELECT id FROM disciplines WHERE code = $1`, disciplineCode); err != nil {
		WriteError(w, http.StatusBadRequest, "Unknown discipline")
		return
	}
	sortOrder := req.SortOrder
	if sortOrder == nil {
		sortOrder = &existing.SortOrder
	}
	_, err = s.DB.Exec(`
UPDATE categories SET discipline_id = $2, name = $3, sort_order = $4 WHERE id = $1
`, categoryID, disciplineID, name, *sortOrder)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, CategoryDTO{
		ID:             categoryID,
		DisciplineCode: disciplineCode,
		Name:           name,
		Slug:           existing.Slug,
		SortOrder:      *sortOrder,
	})
}

func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, categoryID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Category not found")
		return
	}
	var hasVideos bool
	_ = s.DB.Get(&hasVideos, `SELECT EXISTS(SELECT 1 FROM videos WHERE category_id = $1)`, categoryID)
	if hasVideos {
		WriteError(w, http.StatusBadRequest, "Category still has videos")
		return
	}
	_, _ = s.DB.Exec(`DELETE FROM categories WHERE id = $1`, categoryID)
	w.WriteHeader(http.StatusNoContent)
}

type categoryRow struct {
	ID             string `db:"id"`
	DisciplineCode string `db:"discipline_code"`
	Name           string `db:"name"`
	Slug           string `db:"slug"`
	SortOrder      int    `db:"sort_order"`
}

func (row categoryRow) dto() CategoryDTO {
	return CategoryDTO{
		ID:             row.ID,
		DisciplineCode: row.DisciplineCode,
		Name:           row.Name,
		Slug:           row.Slug,
		SortOrder:      row.SortOrder,
	}
}

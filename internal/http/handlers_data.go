package http

import (
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	v := s.view(r, "summary")
	sum, err := s.data.Summary(r.Context(), v)
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newSummaryResponse(sum, v.Normalized()))
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := ParseExpenseQuery(s.validate, r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	v := s.view(r, "expenses")
	page, err := s.data.Expenses(r.Context(), v, q.Filter())
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ExpensesResponse{
		Total:        page.Total,
		Expenses:     newRecords(page.Rows),
		Limit:        page.Limit,
		Offset:       page.Offset,
		IsNormalized: v.Normalized(),
	})
}

// handleIncome lists income rows. Only the date and paging filters apply.
func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	q, err := ParseExpenseQuery(s.validate, r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	v := s.view(r, "income")
	page, err := s.data.Income(r.Context(), v, q.Filter())
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, IncomeResponse{
		Total:        page.Total,
		Income:       newRecords(page.Rows),
		Limit:        page.Limit,
		Offset:       page.Offset,
		IsNormalized: v.Normalized(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := ParseSearchQuery(s.validate, r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	v := s.view(r, "search")
	res, err := s.data.Search(r.Context(), v, q.Q, q.Limit)
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, SearchResponse{
		Query:        res.Query,
		TotalAmount:  Amount(res.TotalAmount),
		TotalIncome:  Amount(res.TotalIncome),
		Count:        res.Count,
		Results:      newRecords(res.Rows),
		IsNormalized: v.Normalized(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.data.Categories(r.Context(), s.view(r, "categories"))
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, CategoriesResponse{Categories: cats})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.data.Tags(r.Context(), s.view(r, "tags"))
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, TagsResponse{Tags: tags})
}

package dto

import (
	"time"

	"github.com/jhoicas/geststore-api/internal/domain/entity"
)

func ToStockResponse(s *entity.Stock) *StockResponse {
	if s == nil {
		return nil
	}
	return &StockResponse{
		ID:                s.ID,
		ProductID:         s.ProductID,
		ProductName:       s.ProductName,
		ProductSKU:        s.ProductSKU,
		QuantityAvailable: s.QuantityAvailable,
		QuantityReserved:  s.QuantityReserved,
		TotalQuantity:     s.TotalQuantity(),
		MinimumLevel:      s.MinimumLevel,
		Location:          s.Location,
		LowStock:          s.IsLowStock(),
		LastUpdated:       s.LastUpdated,
	}
}

func ToStockResponses(list []*entity.Stock) []StockResponse {
	out := make([]StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToStockResponse(s))
	}
	return out
}

func ToProductResponse(p *entity.Product, s *entity.Stock) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		Category:    p.Category,
		Active:      p.Active,
		Stock:       ToStockResponse(s),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToTaskProductResponse(tp *entity.TaskProduct) *TaskProductResponse {
	if tp == nil {
		return nil
	}
	return &TaskProductResponse{
		ID:           tp.ID,
		TaskID:       tp.TaskID,
		ProductID:    tp.ProductID,
		ProductName:  tp.ProductName,
		ProductSKU:   tp.ProductSKU,
		Quantity:     tp.Quantity,
		QuantityUsed: tp.QuantityUsed,
		Outstanding:  tp.Outstanding(),
		Notes:        tp.Notes,
		CreatedAt:    tp.CreatedAt,
		UpdatedAt:    tp.UpdatedAt,
	}
}

func ToTaskProductResponses(list []*entity.TaskProduct) []TaskProductResponse {
	out := make([]TaskProductResponse, 0, len(list))
	for _, tp := range list {
		out = append(out, *ToTaskProductResponse(tp))
	}
	return out
}

// ToTaskResponse convierte la tarea; now decide si está vencida.
func ToTaskResponse(t *entity.Task, now time.Time) *TaskResponse {
	if t == nil {
		return nil
	}
	resp := &TaskResponse{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           string(t.Status),
		StatusLabel:      entity.TaskStatusLabels[t.Status],
		Priority:         string(t.Priority),
		PriorityLabel:    entity.TaskPriorityLabels[t.Priority],
		DueDate:          t.DueDate,
		StartDate:        t.StartDate,
		EndDate:          t.EndDate,
		Completed:        t.Completed,
		Overdue:          t.IsOverdue(now),
		AssignedToUserID: t.AssignedTo,
		CreatedByUserID:  t.CreatedBy,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if len(t.Products) > 0 {
		resp.Products = ToTaskProductResponses(t.Products)
	}
	return resp
}

func ToTaskResponses(list []*entity.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *ToTaskResponse(t, now))
	}
	return out
}

func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		RoleLabel:  entity.RoleLabels[u.Role],
		Department: u.Department,
		Active:     u.Active,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func ToStockMovementResponses(list []*entity.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, StockMovementResponse{
			ID:             m.ID,
			StockID:        m.StockID,
			ProductID:      m.ProductID,
			Type:           m.Type,
			Quantity:       m.Quantity,
			AvailableAfter: m.AvailableAfter,
			ReservedAfter:  m.ReservedAfter,
			TaskID:         m.TaskID,
			Reference:      m.Reference,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt,
		})
	}
	return out
}

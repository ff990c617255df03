package budget

import (
	"errors"
	"strconv"

	"mylg-backend/internal/auth"
	"mylg-backend/internal/models"
	"mylg-backend/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

type DeleteItemsRequest struct {
	BudgetItemIDs []string `json:"budgetItemIds"`
}

type DuplicateItemsRequest struct {
	BudgetItemIDs []string `json:"budgetItemIds"`
}

type NewRevisionRequest struct {
	Duplicate    bool     `json:"duplicate"`
	FromRevision *float64 `json:"fromRevision"`
}

type SwitchRevisionRequest struct {
	Revision float64 `json:"revision"`
}

type UpdateHeaderRequest struct {
	Title          *string  `json:"title"`
	StartDate      *string  `json:"startDate"`
	EndDate        *string  `json:"endDate"`
	HeaderBallPark *float64 `json:"headerBallPark"`
}

type BudgetStateResponse struct {
	Header    *models.BudgetHeader    `json:"header"`
	Items     []models.BudgetLineItem `json:"items"`
	UndoDepth int                     `json:"undoDepth"`
	RedoDepth int                     `json:"redoDepth"`
}

// -------------------------
// Yardımcı: kimlik ve oturum çözümü
// -------------------------

func callerIdentity(c *fiber.Ctx) (uint, string, string, error) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, "", "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}
	name, _ := c.Locals(auth.CtxUserNameKey).(string)
	return userID, name, strconv.FormatUint(uint64(userID), 10), nil
}

func resolveSession(c *fiber.Ctx, sm *SessionManager) (*Session, string, string, error) {
	userID, name, senderID, err := callerIdentity(c)
	if err != nil {
		return nil, "", "", err
	}

	projectID := c.Params("id")
	if projectID == "" {
		return nil, "", "", fiber.NewError(fiber.StatusBadRequest, "Proje id zorunlu")
	}

	sess, err := sm.Get(userID, projectID)
	if err != nil {
		return nil, "", "", fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
	}
	return sess, name, senderID, nil
}

// emitBudgetUpdated - mutasyon sonrası diğer bağlı istemcilere tam refetch sinyali.
// Artımlı diff yok; alan bazlı değişiklik taşınmaz.
func emitBudgetUpdated(hub *realtime.Hub, sess *Session, username, senderID string) {
	if hub == nil || sess.Project() == nil {
		return
	}
	projectID := sess.Project().ProjectID

	var revision, total float64
	if h := sess.Header(); h != nil {
		revision = h.Revision
		total = h.HeaderFinalTotalCost
	}

	hub.Broadcast(realtime.Message{
		Action:         realtime.ActionBudgetUpdated,
		ProjectID:      projectID,
		Title:          sess.Project().Title,
		Revision:       revision,
		Total:          total,
		ConversationID: realtime.ConversationID(projectID),
		Username:       username,
		SenderID:       senderID,
	})
}

func stateResponse(sess *Session) BudgetStateResponse {
	return BudgetStateResponse{
		Header:    sess.Header(),
		Items:     sess.Items(),
		UndoDepth: sess.UndoDepth(),
		RedoDepth: sess.RedoDepth(),
	}
}

// -------------------------
// GET /api/projects/:id/budget
// -------------------------
// budgetUpdated sonrası refetch bu uçtan gelir; diğer editörlerin yazdıklarının
// görünmesi için oturum store'dan tazelenir (undo/redo yığınları korunur)
func GetBudgetHandler(sm *SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _, _, err := resolveSession(c, sm)
		if err != nil {
			return err
		}
		if err := sess.Refresh(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe yüklenemedi")
		}
		return c.JSON(stateResponse(sess))
	}
}

// PUT /api/projects/:id/budget/header
// Başlık/tarih/ballpark gibi header meta alanları; satır mutasyonu değildir
func UpdateHeaderHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var body UpdateHeaderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		header, err := sess.UpdateHeaderInfo(HeaderUpdate{
			Title:          body.Title,
			StartDate:      body.StartDate,
			EndDate:        body.EndDate,
			HeaderBallPark: body.HeaderBallPark,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe header güncellenemedi")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.JSON(header)
	}
}

// DELETE /api/projects/:id/budget/session
// Proje sayfasından çıkışta oturum (ve undo geçmişi) kapatılır
func CloseSessionHandler(sm *SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, _, err := callerIdentity(c)
		if err != nil {
			return err
		}
		sm.Drop(userID, c.Params("id"))
		return c.JSON(fiber.Map{"closed": true})
	}
}

// GET /api/projects/:id/budget/revisions
func ListRevisionsHandler(sm *SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _, _, err := resolveSession(c, sm)
		if err != nil {
			return err
		}
		revisions, err := sess.Revisions()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Revizyonlar alınamadı")
		}
		return c.JSON(revisions)
	}
}

// POST /api/projects/:id/budget/items
func CreateItemHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var draft models.BudgetLineItem
		if err := c.BodyParser(&draft); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		item, err := sess.CreateLineItem(draft)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe kalemi oluşturulamadı")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// PUT /api/projects/:id/budget/items/:itemId
func UpdateItemHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var data models.BudgetLineItem
		if err := c.BodyParser(&data); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		data.BudgetItemID = c.Params("itemId")

		item, err := sess.UpdateLineItem(data)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Bütçe kalemi bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe kalemi güncellenemedi")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.JSON(item)
	}
}

// DELETE /api/projects/:id/budget/items (gövdede id listesi, toplu silme)
func DeleteItemsHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var body DeleteItemsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.BudgetItemIDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "budgetItemIds zorunlu")
		}

		if err := sess.DeleteLineItems(body.BudgetItemIDs); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe kalemleri silinemedi")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.JSON(stateResponse(sess))
	}
}

// POST /api/projects/:id/budget/items/duplicate
func DuplicateItemsHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var body DuplicateItemsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		clones, err := sess.DuplicateLineItems(body.BudgetItemIDs)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe kalemleri kopyalanamadı")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.Status(fiber.StatusCreated).JSON(clones)
	}
}

// POST /api/projects/:id/budget/undo
func UndoHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		if sess.Undo() {
			emitBudgetUpdated(hub, sess, name, senderID)
		}
		return c.JSON(stateResponse(sess))
	}
}

// POST /api/projects/:id/budget/redo
func RedoHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		if sess.Redo() {
			emitBudgetUpdated(hub, sess, name, senderID)
		}
		return c.JSON(stateResponse(sess))
	}
}

// POST /api/projects/:id/budget/revisions
func NewRevisionHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var body NewRevisionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		header, err := sess.NewRevision(body.Duplicate, body.FromRevision)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Revizyon oluşturulamadı")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.Status(fiber.StatusCreated).JSON(header)
	}
}

// POST /api/projects/:id/budget/revisions/switch
func SwitchRevisionHandler(sm *SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _, _, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var body SwitchRevisionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if err := sess.SwitchRevision(body.Revision); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Revizyon bulunamadı")
		}
		return c.JSON(stateResponse(sess))
	}
}

// DELETE /api/projects/:id/budget/revisions/:rev
func DeleteRevisionHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		rev, err := strconv.ParseFloat(c.Params("rev"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Revizyon numarası geçersiz")
		}

		if err := sess.DeleteRevision(rev); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Revizyon silinemedi")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.JSON(stateResponse(sess))
	}
}

// POST /api/projects/:id/budget/revisions/client
func SetClientRevisionHandler(sm *SessionManager, hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, name, senderID, err := resolveSession(c, sm)
		if err != nil {
			return err
		}

		var body SwitchRevisionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if err := sess.SetClientRevision(body.Revision); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Client revizyonu işaretlenemedi")
		}

		emitBudgetUpdated(hub, sess, name, senderID)
		return c.JSON(stateResponse(sess))
	}
}

// GET /api/projects/:id/budget/revisions/:rev/export.csv
func ExportCSVHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := c.Params("id")
		rev, err := strconv.ParseFloat(c.Params("rev"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Revizyon numarası geçersiz")
		}

		headers, err := store.FetchHeaders(projectID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Revizyonlar alınamadı")
		}

		var target *models.BudgetHeader
		for i := range headers {
			if headers[i].Revision == rev {
				target = &headers[i]
				break
			}
		}
		if target == nil {
			return fiber.NewError(fiber.StatusNotFound, "Revizyon bulunamadı")
		}

		items, err := store.FetchItems(target.BudgetID, rev)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe kalemleri alınamadı")
		}

		c.Set("Content-Type", "text/csv; charset=utf-8")
		c.Set("Content-Disposition", `attachment; filename="`+CSVFileName(rev)+`"`)
		return c.SendString(WriteCSV(items))
	}
}

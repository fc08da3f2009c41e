package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"storefront/pkg/domain/model"
)

type slideJSON struct {
	ID              string    `json:"_id,omitempty"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle"`
	ButtonText      string    `json:"buttonText"`
	Image           string    `json:"image" validate:"required"`
	MobileImage     string    `json:"mobileImage"`
	Link            string    `json:"link"`
	BgColor         string    `json:"bgColor"`
	TitleColor      string    `json:"titleColor"`
	SubtitleColor   string    `json:"subtitleColor"`
	ButtonBgColor   string    `json:"buttonBgColor"`
	ButtonTextColor string    `json:"buttonTextColor"`
	Size            string    `json:"size" validate:"omitempty,oneof=small medium large"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

func (s *slideJSON) toModel() model.Slide {
	return model.Slide{
		Title:           s.Title,
		Subtitle:        s.Subtitle,
		ButtonText:      s.ButtonText,
		Image:           s.Image,
		MobileImage:     s.MobileImage,
		Link:            s.Link,
		BgColor:         s.BgColor,
		TitleColor:      s.TitleColor,
		SubtitleColor:   s.SubtitleColor,
		ButtonBgColor:   s.ButtonBgColor,
		ButtonTextColor: s.ButtonTextColor,
		Size:            model.SlideSize(s.Size),
	}
}

func toSlideJSON(s *model.Slide) slideJSON {
	return slideJSON{
		ID:              s.ID.Hex(),
		Title:           s.Title,
		Subtitle:        s.Subtitle,
		ButtonText:      s.ButtonText,
		Image:           s.Image,
		MobileImage:     s.MobileImage,
		Link:            s.Link,
		BgColor:         s.BgColor,
		TitleColor:      s.TitleColor,
		SubtitleColor:   s.SubtitleColor,
		ButtonBgColor:   s.ButtonBgColor,
		ButtonTextColor: s.ButtonTextColor,
		Size:            string(s.Size),
		CreatedAt:       s.CreatedAt,
	}
}

type bannerJSON struct {
	ID         string    `json:"_id,omitempty"`
	Image      string    `json:"image"`
	Video      string    `json:"video"`
	Title      string    `json:"title"`
	ButtonText string    `json:"buttonText"`
	ButtonLink string    `json:"buttonLink"`
	Timer      string    `json:"timer"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

type reelRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url" validate:"required"`
}

type reelResponse struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url"`
	User        string    `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type campaignRequest struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

type campaignResponse struct {
	ID             string     `json:"_id"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
	CreatedBy      string     `json:"createdBy,omitempty"`
	SentAt         *time.Time `json:"sentAt"`
	RecipientCount int        `json:"recipientCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func toReelResponse(r *model.Reel) reelResponse {
	return reelResponse{
		ID:          r.ID.Hex(),
		Title:       r.Title,
		Description: r.Description,
		VideoURL:    r.VideoURL,
		User:        optionalHex(r.UserID),
		CreatedAt:   r.CreatedAt,
	}
}

func toCampaignResponse(c *model.Campaign) campaignResponse {
	return campaignResponse{
		ID:             c.ID.Hex(),
		Subject:        c.Subject,
		Body:           c.Body,
		CreatedBy:      optionalHex(c.CreatedBy),
		SentAt:         c.SentAt,
		RecipientCount: c.RecipientCount,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (h *Handler) listSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.services.Content.ListSlides(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	result := make([]slideJSON, 0, len(slides))
	for i := range slides {
		result = append(result, toSlideJSON(&slides[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getSlide(w http.ResponseWriter, r *http.Request) {
	slideID, err := parseObjectID(mux.Vars(r)["id"], "slide id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	slide, err := h.services.Content.GetSlide(r.Context(), slideID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlideJSON(slide))
}

func (h *Handler) createSlide(w http.ResponseWriter, r *http.Request) {
	var req slideJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	slide, err := h.services.Content.CreateSlide(r.Context(), req.toModel())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSlideJSON(slide))
}

func (h *Handler) updateSlide(w http.ResponseWriter, r *http.Request) {
	slideID, err := parseObjectID(mux.Vars(r)["id"], "slide id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req slideJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	slide, err := h.services.Content.UpdateSlide(r.Context(), slideID, req.toModel())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlideJSON(slide))
}

func (h *Handler) deleteSlide(w http.ResponseWriter, r *http.Request) {
	slideID, err := parseObjectID(mux.Vars(r)["id"], "slide id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Content.DeleteSlide(r.Context(), slideID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Slide deleted successfully")
}

func (h *Handler) getBanner(w http.ResponseWriter, r *http.Request) {
	banner, err := h.services.Content.GetBanner(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bannerJSON{
		ID:         banner.ID.Hex(),
		Image:      banner.Image,
		Video:      banner.Video,
		Title:      banner.Title,
		ButtonText: banner.ButtonText,
		ButtonLink: banner.ButtonLink,
		Timer:      banner.Timer,
		UpdatedAt:  banner.UpdatedAt,
	})
}

func (h *Handler) saveBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	banner, err := h.services.Content.SaveBanner(r.Context(), model.Banner{
		Image:      req.Image,
		Video:      req.Video,
		Title:      req.Title,
		ButtonText: req.ButtonText,
		ButtonLink: req.ButtonLink,
		Timer:      req.Timer,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.ID = banner.ID.Hex()
	req.UpdatedAt = banner.UpdatedAt
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) deleteBanner(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Content.DeleteBanner(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Banner deleted successfully")
}

func (h *Handler) listReels(w http.ResponseWriter, r *http.Request) {
	reels, err := h.services.Content.ListReels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	result := make([]reelResponse, 0, len(reels))
	for _, reel := range reels {
		result = append(result, toReelResponse(&reel))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getReel(w http.ResponseWriter, r *http.Request) {
	reelID, err := parseObjectID(mux.Vars(r)["id"], "reel id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reel, err := h.services.Content.GetReel(r.Context(), reelID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReelResponse(reel))
}

func (h *Handler) createReel(w http.ResponseWriter, r *http.Request) {
	var req reelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID, _ := userIDFrom(r.Context())
	reel, err := h.services.Content.CreateReel(r.Context(), model.Reel{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		UserID:      userID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReelResponse(reel))
}

func (h *Handler) deleteReel(w http.ResponseWriter, r *http.Request) {
	reelID, err := parseObjectID(mux.Vars(r)["id"], "reel id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Content.DeleteReel(r.Context(), reelID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Reel deleted successfully")
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.services.Campaigns.ListCampaigns(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	result := make([]campaignResponse, 0, len(campaigns))
	for i := range campaigns {
		result = append(result, toCampaignResponse(&campaigns[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	createdBy, _ := userIDFrom(r.Context())
	campaign, err := h.services.Campaigns.CreateCampaign(r.Context(), req.Subject, req.Body, createdBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCampaignResponse(campaign))
}

func (h *Handler) sendCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := parseObjectID(mux.Vars(r)["campaignId"], "campaign id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaign, err := h.services.Campaigns.SendCampaign(r.Context(), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(campaign))
}

func (h *Handler) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := parseObjectID(mux.Vars(r)["campaignId"], "campaign id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Campaigns.DeleteCampaign(r.Context(), campaignID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Campaign deleted successfully")
}

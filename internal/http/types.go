package http

import (
	"net/http"

	"github.com/halisahaclub/halisaha/internal/config"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/invite"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/metrics"
	"github.com/halisahaclub/halisaha/internal/notifier"
	"github.com/halisahaclub/halisaha/internal/pubsub"
	"github.com/halisahaclub/halisaha/internal/reconcile"
)

type Server struct {
	Groups         group.GroupStore
	Matches        match.MatchStore
	Invites        invite.InviteService
	Reconciler     *reconcile.Service
	Notifier       notifier.Notifier
	PubSub         pubsub.PubSubClient
	Metrics        metrics.Metrics
	Counters       metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}

// User-facing error messages, in Turkish like the rest of the product.
const (
	msgGenericError       = "Bir hata oluştu."
	msgDuplicateGuest     = "Bu isimde bir misafir oyuncu zaten var."
	msgAlreadyMember      = "Zaten bu grubun üyesisiniz."
	msgInvalidJoinCode    = "Geçersiz davet kodu."
	msgNotFound           = "Bulunamadı."
	msgInvalidRating      = "Puan 1 ile 10 arasında olmalı."
	msgMatchPlayed        = "Bu maç zaten oynandı."
	msgSamePlayer         = "Oyuncu kendisiyle birleştirilemez."
	msgAlreadyResolved    = "Bu işlem zaten sonuçlandı."
	msgUnknownGuestPlayer = "Böyle bir misafir oyuncu yok."
	msgUnresolvedTarget   = "Hedef oyuncunun adı belirlenemedi."
)

// response is the envelope every JSON endpoint answers with.
type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

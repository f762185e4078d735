package nativehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// extensionCookie is a chrome.cookies.Cookie as the extension sends it.
// Browsers report expirationDate in fractional seconds.
type extensionCookie struct {
	Name           string          `json:"name"`
	Value          string          `json:"value"`
	Domain         string          `json:"domain"`
	Path           string          `json:"path"`
	Secure         bool            `json:"secure"`
	HTTPOnly       bool            `json:"httpOnly"`
	HostOnly       bool            `json:"hostOnly"`
	SameSite       string          `json:"sameSite"`
	Session        bool            `json:"session"`
	ExpirationDate *float64        `json:"expirationDate,omitempty"`
	StoreID        string          `json:"storeId"`
	PartitionKey   json.RawMessage `json:"partitionKey,omitempty"`
}

func (e *extensionCookie) cookie() cookielib.Cookie {
	c := cookielib.Cookie{
		Name:         e.Name,
		Value:        e.Value,
		Domain:       e.Domain,
		Path:         e.Path,
		Secure:       e.Secure,
		HTTPOnly:     e.HTTPOnly,
		HostOnly:     e.HostOnly,
		SameSite:     cookielib.ParseSameSite(e.SameSite),
		Session:      e.Session,
		StoreID:      e.StoreID,
		PartitionKey: e.PartitionKey,
	}
	if e.ExpirationDate != nil && !e.Session {
		exp := int64(*e.ExpirationDate)
		c.Expiration = &exp
	}
	return c
}

func toCookies(in []extensionCookie) []cookielib.Cookie {
	out := make([]cookielib.Cookie, 0, len(in))
	for i := range in {
		out = append(out, in[i].cookie())
	}
	return out
}

// AnalyzeParams carries the cookies the extension read for the active tab.
type AnalyzeParams struct {
	URL     string            `json:"url"`
	Cookies []extensionCookie `json:"cookies"`
}

type ScoreParams struct {
	Cookies []extensionCookie `json:"cookies"`
}

// PlanDeleteParams selects cookies the extension is about to delete.
type PlanDeleteParams struct {
	Cookies    []extensionCookie    `json:"cookies"`
	Categories []cookielib.Category `json:"categories,omitempty"`
	Force      bool                 `json:"force,omitempty"`
}

// PlanDeleteResult lists the removals the extension has to execute.
type PlanDeleteResult struct {
	Requests []cookielib.RemoveRequest `json:"requests"`
	Filtered int                       `json:"filtered"`
}

// GuardCheckParams is a chrome.cookies.onChanged event.
type GuardCheckParams struct {
	Cookie  extensionCookie `json:"cookie"`
	Removed bool            `json:"removed"`
	Cause   string          `json:"cause,omitempty"`
}

type GuardCheckResult struct {
	Remove  bool                     `json:"remove"`
	Details *cookielib.RemoveRequest `json:"details,omitempty"`
}

type OnboardingResult struct {
	FirstRun bool `json:"firstRun"`
}

// Host answers extension requests by running the cookie pipeline locally.
// The extension owns the cookie store: the host plans deletions and
// decides on regenerations, the extension carries them out.
type Host struct {
	api    *api.Api
	guard  *cookielib.Guard
	log    logger.Logger
	stdin  io.Reader
	stdout io.Writer
}

// NewHost returns a host speaking on os.Stdin and os.Stdout. l must not
// write to stdout.
func NewHost(a *api.Api, l logger.Logger) *Host {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Host{
		api:    a,
		guard:  a.Guard(nil),
		log:    l,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// Run serves requests until the browser closes stdin.
func (h *Host) Run(ctx context.Context) error {
	h.log.Info("native host started")
	for {
		err := h.processOneMessage(ctx)
		if errors.Is(err, io.EOF) {
			h.log.Info("native host stopped: browser closed the connection")
			return nil
		}
		if err != nil {
			h.log.Error("native host: %v", err)
			return err
		}
	}
}

func (h *Host) processOneMessage(ctx context.Context) error {
	data, err := ReadMessage(h.stdin)
	if err != nil {
		return err
	}
	req, err := ParseRequest(data)
	if err != nil {
		return WriteMessage(h.stdout, MakeErrorResponse(0, fmt.Errorf("invalid request: %w", err)))
	}
	return WriteMessage(h.stdout, h.handleRequest(ctx, req))
}

func decodeParams(req *Request, v any) error {
	if len(req.Message) == 0 {
		return fmt.Errorf("%s: message is required", req.Method)
	}
	if err := json.Unmarshal(req.Message, v); err != nil {
		return fmt.Errorf("invalid %s params: %w", req.Method, err)
	}
	return nil
}

func (h *Host) handleRequest(ctx context.Context, req *Request) []byte {
	h.log.Debug("request %d: %s", req.ID, req.Method)
	var result any
	var err error

	switch req.Method {
	case "version":
		result = h.api.Version()

	case "analyze":
		var params AnalyzeParams
		if err = decodeParams(req, &params); err != nil {
			return MakeErrorResponse(req.ID, err)
		}
		result = h.api.Analyze(ctx, params.URL, toCookies(params.Cookies))

	case "classify":
		var params common.ClassifyParams
		if err = decodeParams(req, &params); err != nil {
			return MakeErrorResponse(req.ID, err)
		}
		result = h.api.Classify(params.Names)

	case "score":
		var params ScoreParams
		if err = decodeParams(req, &params); err != nil {
			return MakeErrorResponse(req.ID, err)
		}
		result = h.api.Score(toCookies(params.Cookies))

	case "plan_delete":
		var params PlanDeleteParams
		if err = decodeParams(req, &params); err != nil {
			return MakeErrorResponse(req.ID, err)
		}
		targets, filtered := h.api.PlanDelete(&common.DeleteParams{
			Cookies:    toCookies(params.Cookies),
			Categories: params.Categories,
			Force:      params.Force,
		})
		result = &PlanDeleteResult{Requests: h.api.RegisterDeleted(targets), Filtered: filtered}

	case "guard_check":
		var params GuardCheckParams
		if err = decodeParams(req, &params); err != nil {
			return MakeErrorResponse(req.ID, err)
		}
		ev := cookielib.ChangeEvent{Cookie: params.Cookie.cookie(), Cause: cookielib.ChangeAdded}
		if params.Removed {
			ev.Cause = cookielib.ChangeRemoved
		}
		res := &GuardCheckResult{}
		if details, ok := h.guard.Check(ev); ok {
			h.log.Info("regenerated cookie %s, asking the extension to remove it", ev.Cookie.GuardKey())
			res.Remove = true
			res.Details = &details
		}
		result = res

	case "streak":
		result, err = h.api.TickStreak(ctx)

	case "onboarding":
		var first bool
		first, err = h.api.FirstRun(ctx)
		result = &OnboardingResult{FirstRun: first}

	case "tip":
		result = h.api.Tip()

	default:
		return MakeErrorResponse(req.ID, fmt.Errorf("unknown method: %s", req.Method))
	}

	if err != nil {
		h.log.Warning("request %d (%s) failed: %v", req.ID, req.Method, err)
		return MakeErrorResponse(req.ID, err)
	}
	return MakeSuccessResponse(req.ID, result)
}

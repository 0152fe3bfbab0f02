package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/infrastructure/configuration"
	"socialcast/infrastructure/logger"
	"socialcast/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// identityFunc resolves the connected account's external id and display name
// right after token exchange.
type identityFunc func(ctx context.Context, token *oauth2.Token) (externalID, accountName string, err error)

type IOAuthHandler interface {
	Connect(c *gin.Context)
	Callback(c *gin.Context)
}

// OAuthHandler runs one platform's authorization-code flow. State nonces are
// single use and expire after ten minutes.
type OAuthHandler struct {
	platform    model.Platform
	config      *oauth2.Config
	authOptions []oauth2.AuthCodeOption
	identity    identityFunc
	credentials usecase.ICredentialUsecase

	mu     sync.Mutex
	states map[string]stateEntry
}

type stateEntry struct {
	userID  string
	expires time.Time
}

func newOAuthHandler(platform model.Platform, config *oauth2.Config, authOptions []oauth2.AuthCodeOption, identity identityFunc, credentials usecase.ICredentialUsecase) *OAuthHandler {
	return &OAuthHandler{
		platform:    platform,
		config:      config,
		authOptions: authOptions,
		identity:    identity,
		credentials: credentials,
		states:      make(map[string]stateEntry),
	}
}

func NewYouTubeOAuthHandler(credentials usecase.ICredentialUsecase) IOAuthHandler {
	oc := configuration.C.OAuth.YouTube
	config := &oauth2.Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		RedirectURL:  oc.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"https://www.googleapis.com/auth/youtube.upload",
			"https://www.googleapis.com/auth/youtube.readonly",
		},
	}
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")}
	return newOAuthHandler(model.PlatformYouTube, config, opts, youtubeIdentity, credentials)
}

func NewTikTokOAuthHandler(credentials usecase.ICredentialUsecase) IOAuthHandler {
	oc := configuration.C.OAuth.TikTok
	config := &oauth2.Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		RedirectURL:  oc.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.tiktok.com/v2/auth/authorize/",
			TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
		},
		Scopes: []string{"user.info.basic", "video.publish"},
	}
	// TikTok names the client id parameter client_key.
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("client_key", oc.ClientID)}
	return newOAuthHandler(model.PlatformTikTok, config, opts, tiktokIdentity, credentials)
}

func NewInstagramOAuthHandler(credentials usecase.ICredentialUsecase) IOAuthHandler {
	oc := configuration.C.OAuth.Instagram
	config := &oauth2.Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		RedirectURL:  oc.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.facebook.com/v21.0/dialog/oauth",
			TokenURL: "https://graph.facebook.com/v21.0/oauth/access_token",
		},
		Scopes: []string{"instagram_basic", "instagram_content_publish", "pages_show_list"},
	}
	return newOAuthHandler(model.PlatformInstagram, config, nil, instagramIdentity, credentials)
}

// Connect hands the frontend the provider authorization URL.
func (h *OAuthHandler) Connect(c *gin.Context) {
	userID := c.GetString("user_id")
	state := uuid.NewString()

	h.mu.Lock()
	for s, entry := range h.states {
		if time.Now().After(entry.expires) {
			delete(h.states, s)
		}
	}
	h.states[state] = stateEntry{userID: userID, expires: time.Now().Add(10 * time.Minute)}
	h.mu.Unlock()

	url := h.config.AuthCodeURL(state, h.authOptions...)
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: gin.H{"auth_url": url}})
}

// Callback exchanges the authorization code and stores the grant.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "code and state are required"})
		return
	}

	h.mu.Lock()
	entry, ok := h.states[state]
	delete(h.states, state)
	h.mu.Unlock()
	if !ok || time.Now().After(entry.expires) {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Unknown or expired state"})
		return
	}

	token, err := h.config.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.GetLogger().WithField("platform", h.platform).WithField("error", err).Error("oauth code exchange failed")
		c.JSON(http.StatusBadGateway, dto.Res{ResponseCode: "502", ResponseMessage: "Token exchange failed"})
		return
	}

	externalID, accountName := "", ""
	if h.identity != nil {
		externalID, accountName, err = h.identity(c.Request.Context(), token)
		if err != nil {
			logger.GetLogger().WithField("platform", h.platform).WithField("error", err).Warn("account identity lookup failed")
		}
	}

	if err := h.credentials.Connect(c.Request.Context(), entry.userID, h.platform, token, externalID, accountName); err != nil {
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to store credential"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "00",
		ResponseMessage: "Success",
		Data:            gin.H{"platform": h.platform, "account_name": accountName},
	})
}

func youtubeIdentity(ctx context.Context, token *oauth2.Token) (string, string, error) {
	var out struct {
		Items []struct {
			Id      string `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	err := getJSON(ctx, token, "https://www.googleapis.com/youtube/v3/channels?part=snippet&mine=true", &out)
	if err != nil {
		return "", "", err
	}
	if len(out.Items) == 0 {
		return "", "", fmt.Errorf("no channel on account")
	}
	return out.Items[0].Id, out.Items[0].Snippet.Title, nil
}

func tiktokIdentity(ctx context.Context, token *oauth2.Token) (string, string, error) {
	var out struct {
		Data struct {
			User struct {
				OpenID      string `json:"open_id"`
				DisplayName string `json:"display_name"`
			} `json:"user"`
		} `json:"data"`
	}
	err := getJSON(ctx, token, "https://open.tiktokapis.com/v2/user/info/?fields=open_id,display_name", &out)
	if err != nil {
		return "", "", err
	}
	return out.Data.User.OpenID, out.Data.User.DisplayName, nil
}

// instagramIdentity walks the user's pages to the linked business account,
// which is the id the publishing endpoints operate on.
func instagramIdentity(ctx context.Context, token *oauth2.Token) (string, string, error) {
	var out struct {
		Data []struct {
			InstagramBusinessAccount *struct {
				Id       string `json:"id"`
				Username string `json:"username"`
			} `json:"instagram_business_account"`
		} `json:"data"`
	}
	err := getJSON(ctx, token,
		"https://graph.facebook.com/v21.0/me/accounts?fields=instagram_business_account{id,username}", &out)
	if err != nil {
		return "", "", err
	}
	for _, page := range out.Data {
		if page.InstagramBusinessAccount != nil {
			return page.InstagramBusinessAccount.Id, page.InstagramBusinessAccount.Username, nil
		}
	}
	return "", "", fmt.Errorf("no instagram business account linked")
}

func getJSON(ctx context.Context, token *oauth2.Token, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity endpoint returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

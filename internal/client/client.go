// Package client assembles one TaskFlow session: REST client, entity caches,
// edit session, live subscriber, and conflict resolver. Nothing here is a
// process-wide singleton; two sessions in one process stay independent.
package client

import (
	"context"
	"database/sql"

	"github.com/taskflow/client-go/internal/api"
	"github.com/taskflow/client-go/internal/config"
	"github.com/taskflow/client-go/internal/conflict"
	localdb "github.com/taskflow/client-go/internal/db"
	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/live"
	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
	"github.com/taskflow/client-go/internal/services"
	"github.com/taskflow/client-go/internal/store"
)

// Client is one authenticated TaskFlow session.
type Client struct {
	cfg *config.Config

	API        *api.Client
	Items      *store.ItemCache
	Properties *store.PropertyCache
	Session    *store.SessionTracker
	ItemSvc    *services.ItemService
	Live       *live.Subscriber
	Conflicts  *conflict.Resolver

	journalDB *sql.DB
	journal   *localdb.Journal
}

// New wires a session from configuration. The conflict journal is optional:
// it opens only when a data directory is configured, and a broken journal
// downgrades to none rather than failing the session.
func New(cfg *config.Config) *Client {
	c := &Client{
		cfg:        cfg,
		API:        api.NewClient(cfg.API.BaseURL, cfg.API.Timeout),
		Items:      store.NewItemCache(),
		Properties: store.NewPropertyCache(),
		Session:    store.NewSessionTracker(),
	}
	c.ItemSvc = services.NewItemService(c.API, c.Items)

	if cfg.App.DataDir != "" {
		conn, err := localdb.Open(cfg.App.DataDir)
		if err != nil {
			logging.Warn("conflict journal unavailable", map[string]any{"cause": err.Error()})
		} else {
			c.journalDB = conn
			c.journal = localdb.NewJournal(conn)
		}
	}

	var transport live.Transport
	switch cfg.Live.Transport {
	case "websocket":
		transport = live.NewWebSocketTransport(cfg.API.BaseURL)
	default:
		transport = live.NewSSETransport(cfg.API.BaseURL)
	}
	c.Live = live.NewSubscriber(transport, c.API, c.Items, c.Properties, c.Session, live.Options{
		ReconnectDelay: cfg.Live.ReconnectDelay,
		MaxAttempts:    cfg.Live.MaxReconnectAttempts,
	})

	var journal conflict.Journal
	if c.journal != nil {
		journal = c.journal
	}
	c.Conflicts = conflict.NewResolver(c.Items, c.Session, c.ItemSvc, journal)
	c.Live.OnConflict(c.Conflicts.Observe)

	return c
}

// Login authenticates against the server.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.API.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "login failed"
		}
		return errors.New(errors.ErrUnauthorized, msg)
	}
	return nil
}

// OpenBoard loads a board's items and properties and attaches the live
// subscription to it. Any pending conflict from a previous board is dropped.
func (c *Client) OpenBoard(ctx context.Context, boardID int64) error {
	if err := c.ItemSvc.FetchItems(ctx, boardID, api.ItemQuery{IncludeCompleted: true, IncludeDeleted: true, Size: 200}); err != nil {
		return err
	}

	props, err := c.API.ListProperties(ctx, boardID)
	if err == nil && props.Success && props.Data != nil {
		c.Properties.ReplaceAll(*props.Data)
	}

	c.Conflicts.Reset()
	return c.Live.SubscribeToBoard(boardID)
}

// Boards lists the boards visible to the account.
func (c *Client) Boards(ctx context.Context) ([]models.Board, error) {
	resp, err := c.API.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, errors.New(errors.ErrAPIRejected, resp.Message)
	}
	return *resp.Data, nil
}

// RecentConflicts reads the journal, newest first. Without a journal it
// returns nothing.
func (c *Client) RecentConflicts(ctx context.Context, limit int) ([]models.ConflictLog, error) {
	if c.journal == nil {
		return nil, nil
	}
	return c.journal.Recent(ctx, limit)
}

// OnConnectionLost installs the handler fired once when the live stream
// gives up reconnecting.
func (c *Client) OnConnectionLost(fn func()) {
	c.Live.OnConnectionLost(fn)
}

// Close tears the session down: live stream first, then the journal.
func (c *Client) Close() error {
	c.Live.Disconnect()
	c.Conflicts.Reset()
	c.Session.StopEditing()
	if c.journalDB != nil {
		return c.journalDB.Close()
	}
	return nil
}

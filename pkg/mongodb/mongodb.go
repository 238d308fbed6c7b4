package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Options struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

type Option func(*Options)

func WithURI(uri string) Option {
	return func(o *Options) { o.URI = uri }
}

func WithDatabase(name string) Option {
	return func(o *Options) { o.Database = name }
}

func WithMaxPoolSize(size uint64) Option {
	return func(o *Options) { o.MaxPoolSize = size }
}

func WithConnectTimeout(d time.Duration) Option {
	return func(o *Options) { o.ConnectTimeout = d }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

// Client wraps a connected mongo client bound to one database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and pings the primary, retrying with linear backoff.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	o := &Options{
		URI:            "mongodb://localhost:27017",
		MaxPoolSize:    50,
		ConnectTimeout: 5 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.URI == "" {
		return nil, fmt.Errorf("mongodb uri cannot be empty")
	}
	if o.Database == "" {
		return nil, fmt.Errorf("mongodb database cannot be empty")
	}
	if o.RetryAttempts < 1 {
		o.RetryAttempts = 1
	}

	clientOpts := options.Client().
		ApplyURI(o.URI).
		SetMaxPoolSize(o.MaxPoolSize).
		SetConnectTimeout(o.ConnectTimeout)

	var err error
	for i := 0; i < o.RetryAttempts; i++ {
		var client *mongo.Client
		client, err = mongo.Connect(ctx, clientOpts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, o.ConnectTimeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				return &Client{client: client, db: client.Database(o.Database)}, nil
			}
			_ = client.Disconnect(context.Background())
		}

		if i < o.RetryAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i+1) * o.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", o.RetryAttempts, err)
}

// Collection returns a handle to the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

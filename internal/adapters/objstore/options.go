package objstore

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithEndpoint sets the object store endpoint host.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithRegion sets the bucket region used for request signing.
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

// WithSecure toggles TLS for the endpoint connection.
func WithSecure(secure bool) Option {
	return func(c *Client) {
		c.secure = secure
	}
}

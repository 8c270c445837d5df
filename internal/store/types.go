package store

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	ID         string      `json:"id"`
	Customer   string      `json:"customer"`
	Phone      string      `json:"phone,omitempty"`
	Product    string      `json:"product,omitempty"`
	Amount     float64     `json:"amount"`
	Status     OrderStatus `json:"status"`
	Date       string      `json:"date"`
	Visibility Visibility  `json:"visibility"`
}

type ChartPoint struct {
	Name          string  `json:"name"`
	Conversations int     `json:"conversations"`
	Sales         float64 `json:"sales"`
}

// Document is the whole persisted state. Every mutating request performs a
// full load-mutate-save cycle over it; interleaved requests are
// last-writer-wins, there is no cross-request atomicity.
type Document struct {
	Users     []User       `json:"users"`
	Sessions  []Session    `json:"sessions"`
	Orders    []Order      `json:"orders"`
	ChartData []ChartPoint `json:"chartData"`
}

func (d *Document) Clone() *Document {
	clone := &Document{
		Users:     make([]User, len(d.Users)),
		Sessions:  make([]Session, len(d.Sessions)),
		Orders:    make([]Order, len(d.Orders)),
		ChartData: make([]ChartPoint, len(d.ChartData)),
	}
	copy(clone.Users, d.Users)
	copy(clone.Sessions, d.Sessions)
	copy(clone.Orders, d.Orders)
	copy(clone.ChartData, d.ChartData)
	return clone
}

// Authenticate checks a credential pair against the user list. Stored
// passwords may be bcrypt hashes or plaintext seed values.
func (d *Document) Authenticate(username, password string) (*User, bool) {
	for i := range d.Users {
		u := &d.Users[i]
		if u.Username != username {
			continue
		}
		if strings.HasPrefix(u.Password, "$2") {
			if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil {
				return u, true
			}
			return nil, false
		}
		if u.Password == password {
			return u, true
		}
		return nil, false
	}
	return nil, false
}

func (d *Document) FindSession(token string) (*Session, bool) {
	for i := range d.Sessions {
		if d.Sessions[i].Token == token {
			return &d.Sessions[i], true
		}
	}
	return nil, false
}

// RemoveSession deletes the session with the given token. Removing an
// unknown token is not an error; logout is always allowed to succeed.
func (d *Document) RemoveSession(token string) {
	next := d.Sessions[:0]
	for _, s := range d.Sessions {
		if s.Token != token {
			next = append(next, s)
		}
	}
	d.Sessions = next
}

func (d *Document) FindOrder(id string) (int, bool) {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Seed returns the initial document written on first access: one admin user,
// five sample orders and the seven weekday traffic buckets.
func Seed() *Document {
	return &Document{
		Users: []User{
			{Username: "company11", Password: "company123"},
		},
		Sessions: []Session{},
		Orders: []Order{
			{ID: "#ORD-9021", Customer: "Sarah Jenkins", Phone: "+1 (555) 123-4567", Amount: 245.99, Status: StatusDelivered, Date: "Just now", Visibility: VisibilityPrivate, Product: "Wireless Handsfree"},
			{ID: "#ORD-9020", Customer: "Michael Chen", Phone: "+1 (555) 987-6543", Amount: 89.50, Status: StatusPending, Date: "5 mins ago", Visibility: VisibilityPublic, Product: "Leather Handbag"},
			{ID: "#ORD-9019", Customer: "Emma Wilson", Amount: 120.00, Status: StatusShipped, Date: "1 hour ago", Visibility: VisibilityPrivate, Product: "Smart Watch"},
			{ID: "#ORD-9018", Customer: "James Rodriguez", Amount: 450.25, Status: StatusDelivered, Date: "2 hours ago", Visibility: VisibilityPublic, Product: "Sunglasses"},
			{ID: "#ORD-9017", Customer: "Lisa Thompson", Amount: 65.00, Status: StatusPending, Date: "3 hours ago", Visibility: VisibilityPrivate, Product: "Wireless Handsfree"},
		},
		ChartData: []ChartPoint{
			{Name: "Mon", Conversations: 420, Sales: 2400},
			{Name: "Tue", Conversations: 380, Sales: 2100},
			{Name: "Wed", Conversations: 550, Sales: 3200},
			{Name: "Thu", Conversations: 490, Sales: 2800},
			{Name: "Fri", Conversations: 680, Sales: 4100},
			{Name: "Sat", Conversations: 720, Sales: 4500},
			{Name: "Sun", Conversations: 650, Sales: 3900},
		},
	}
}

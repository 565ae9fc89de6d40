// Package template fills notification templates with order and customer data.
package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/iyunix/go-smsassistent/internal/domain"
)

// DateLayout renders {date_added} as day-month-year hour:minute.
const DateLayout = "02-01-2006 15:04"

// Store identifies the shop in {store_name} and {store_url}.
type Store struct {
	Name string
	URL  string
}

type OrderItem struct {
	ID    int64
	Name  string
	Total float64
}

type OrderData struct {
	Store         Store
	OrderID       int64
	DateAdded     time.Time
	PaymentMethod string // human readable title
	PaymentCode   string // gateway id, e.g. "cod"
	Email         string
	Telephone     string
	FirstName     string
	LastName      string
	Total         float64
	Currency      string
	Items         []OrderItem
}

type CustomerData struct {
	Store      Store
	CustomerID int64
	Email      string
	FirstName  string
	LastName   string
	Telephone  string
}

// FormatPrice renders an amount with two decimals followed by the currency code.
func FormatPrice(amount float64, currency string) string {
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", amount, currency))
}

// RenderOrder substitutes the order placeholders in tpl. Unknown
// placeholders are left as they are.
func RenderOrder(tpl string, d OrderData) string {
	date := ""
	if !d.DateAdded.IsZero() {
		date = d.DateAdded.Format(DateLayout)
	}
	ids := lo.Map(d.Items, func(it OrderItem, _ int) string { return strconv.FormatInt(it.ID, 10) })
	names := lo.Map(d.Items, func(it OrderItem, _ int) string { return it.Name })
	priced := lo.Map(d.Items, func(it OrderItem, _ int) string {
		return it.Name + "(" + FormatPrice(it.Total, d.Currency) + ")"
	})

	return strings.NewReplacer(
		"{store_name}", d.Store.Name,
		"{store_url}", d.Store.URL,
		"{order_id}", strconv.FormatInt(d.OrderID, 10),
		"{date_added}", date,
		"{payment_method}", d.PaymentMethod,
		"{payment_code}", d.PaymentCode,
		"{email}", d.Email,
		"{telephone}", d.Telephone,
		"{firstname}", d.FirstName,
		"{lastname}", d.LastName,
		"{total}", FormatPrice(d.Total, d.Currency),
		"{products_ids}", strings.Join(ids, ","),
		"{products_names}", strings.Join(names, ","),
		"{products_names_prices}", strings.Join(priced, ","),
	).Replace(tpl)
}

// RenderCustomer substitutes the customer placeholders in tpl.
func RenderCustomer(tpl string, d CustomerData) string {
	return strings.NewReplacer(
		"{store_name}", d.Store.Name,
		"{store_url}", d.Store.URL,
		"{customer_id}", strconv.FormatInt(d.CustomerID, 10),
		"{email}", d.Email,
		"{firstname}", d.FirstName,
		"{lastname}", d.LastName,
		"{telephone}", d.Telephone,
	).Replace(tpl)
}

// OrderDataFromEvent maps a WooCommerce order payload.
func OrderDataFromEvent(store Store, ev domain.OrderEvent) OrderData {
	return OrderData{
		Store:         store,
		OrderID:       ev.ID,
		DateAdded:     ev.CreatedAt(),
		PaymentMethod: ev.PaymentMethodTitle,
		PaymentCode:   ev.PaymentMethod,
		Email:         ev.Billing.Email,
		Telephone:     ev.Billing.Phone,
		FirstName:     ev.Billing.FirstName,
		LastName:      ev.Billing.LastName,
		Total:         parseAmount(ev.Total),
		Currency:      ev.Currency,
		Items: lo.Map(ev.LineItems, func(li domain.LineItem, _ int) OrderItem {
			return OrderItem{ID: li.ID, Name: li.Name, Total: parseAmount(li.Total)}
		}),
	}
}

// CustomerDataFromEvent maps a WooCommerce customer payload. The phone is
// the billing phone, which is what customers enter at checkout.
func CustomerDataFromEvent(store Store, ev domain.CustomerEvent) CustomerData {
	first, last := ev.FirstName, ev.LastName
	if first == "" {
		first = ev.Billing.FirstName
	}
	if last == "" {
		last = ev.Billing.LastName
	}
	return CustomerData{
		Store:      store,
		CustomerID: ev.ID,
		Email:      ev.Email,
		FirstName:  first,
		LastName:   last,
		Telephone:  ev.Billing.Phone,
	}
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Package console runs the interactive text menu of the pharmacy system
// over any reader/writer pair. Input is read as whitespace-separated
// tokens, so every text field is a single word. A command may span lines,
// but after invalid input the rest of the current line is dropped.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/giygas/pharmacy-api/interfaces"
	"github.com/giygas/pharmacy-api/inventory"
	"github.com/giygas/pharmacy-api/logging"
	"github.com/giygas/pharmacy-api/orders"
	"github.com/giygas/pharmacy-api/validation"
	"github.com/shopspring/decimal"
)

const indent = "\t\t\t\t"

// errEndOfInput is returned by next when the reader is exhausted
var errEndOfInput = errors.New("end of input")

// Console drives the menu loop
type Console struct {
	store     interfaces.PharmacyStore
	validator interfaces.InputValidator
	in        *bufio.Scanner
	pending   []string // unread tokens of the current line
	out       io.Writer
}

// New creates a console reading commands from in and writing to out
func New(store interfaces.PharmacyStore, validator interfaces.InputValidator, in io.Reader, out io.Writer) *Console {
	return &Console{
		store:     store,
		validator: validator,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, indent+format, args...)
}

// next returns the next input token, reading further lines as needed
func (c *Console) next() (string, error) {
	for len(c.pending) == 0 {
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return "", fmt.Errorf("failed to read input: %w", err)
			}
			return "", errEndOfInput
		}
		c.pending = strings.Fields(c.in.Text())
	}
	tok := c.pending[0]
	c.pending = c.pending[1:]
	return tok, nil
}

// discardLine drops what is left of the current input line
func (c *Console) discardLine() {
	c.pending = nil
}

func (c *Console) prompt(label string) (string, error) {
	c.printf("%s: ", label)
	return c.next()
}

func (c *Console) promptInt(label string) (int, error) {
	tok, err := c.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", validation.ErrInvalidInput, tok)
	}
	return n, nil
}

func (c *Console) promptDecimal(label string) (decimal.Decimal, error) {
	tok, err := c.prompt(label)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", validation.ErrInvalidInput, tok)
	}
	return d, nil
}

func (c *Console) menu() {
	c.printf("========= Pharmacy Management System =========\n")
	c.printf("1. Register New Medicine\n")
	c.printf("2. Display Stock\n")
	c.printf("3. Record Customer Order\n")
	c.printf("4. Display Order Queue\n")
	c.printf("5. Process Order\n")
	c.printf("6. Search Medicine\n")
	c.printf("7. Update Medicine Information\n")
	c.printf("8. Exit\n")
	c.printf("==============================================\n")
	c.printf("Enter your choice: ")
}

// Run shows the menu until the user exits, the input ends or ctx is
// cancelled. The inventory is saved before returning in every case.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return c.saveAndExit()
		}

		c.menu()
		choice, err := c.next()
		if err != nil {
			if !errors.Is(err, errEndOfInput) {
				logging.Error("Console input failed", "error", err)
			}
			fmt.Fprintln(c.out)
			return c.saveAndExit()
		}

		if choice == "8" {
			return c.saveAndExit()
		}

		err = c.dispatch(choice)
		switch {
		case errors.Is(err, errEndOfInput):
			fmt.Fprintln(c.out)
			return c.saveAndExit()
		case errors.Is(err, validation.ErrInvalidInput):
			c.printf("Invalid input! %v\n", err)
			c.discardLine()
		case err != nil:
			logging.Error("Console input failed", "error", err)
			return c.saveAndExit()
		}
	}
}

func (c *Console) dispatch(choice string) error {
	switch choice {
	case "1":
		return c.registerMedicine()
	case "2":
		c.displayStock()
	case "3":
		return c.recordOrder()
	case "4":
		c.displayOrders()
	case "5":
		c.processOrder()
	case "6":
		return c.searchMedicine()
	case "7":
		return c.updateMedicine()
	default:
		c.printf("Invalid choice! Try again.\n")
	}
	return nil
}

func (c *Console) registerMedicine() error {
	name, err := c.prompt("Enter medicine name")
	if err != nil {
		return err
	}
	qty, err := c.promptInt("Enter quantity")
	if err != nil {
		return err
	}
	price, err := c.promptDecimal("Enter price")
	if err != nil {
		return err
	}
	expiry, err := c.prompt("Enter expiry date")
	if err != nil {
		return err
	}
	shelf, err := c.prompt("Enter shelf")
	if err != nil {
		return err
	}

	m := inventory.Medicine{
		Name:       validation.Normalize(name),
		Quantity:   qty,
		Price:      price,
		ExpiryDate: validation.Normalize(expiry),
		Shelf:      validation.Normalize(shelf),
	}
	if err := c.validator.ValidateMedicine(m); err != nil {
		return err
	}

	if _, err := c.store.RegisterMedicine(m); err != nil {
		return fmt.Errorf("%w: %w", validation.ErrInvalidInput, err)
	}
	c.printf("Medicine added successfully!\n")
	return nil
}

func (c *Console) displayStock() {
	fmt.Fprintf(c.out, "\n"+indent+"%-15s %-8s %-8s %-12s %-10s\n", "Name", "Qty", "Price", "Expiry", "Shelf")
	for _, m := range c.store.ListStock() {
		c.printf("%-15s %-8d %-8s %-12s %-10s\n", m.Name, m.Quantity, m.Price.StringFixed(2), m.ExpiryDate, m.Shelf)
	}
}

func (c *Console) recordOrder() error {
	name, err := c.prompt("Enter medicine name")
	if err != nil {
		return err
	}
	qty, err := c.promptInt("Enter quantity")
	if err != nil {
		return err
	}
	price, err := c.promptDecimal("Enter selling price")
	if err != nil {
		return err
	}

	name = validation.Normalize(name)
	if err := c.validator.ValidateOrder(name, qty, price); err != nil {
		return err
	}

	c.store.PlaceOrder(name, qty, price)
	c.printf("Order added successfully!\n")
	return nil
}

func (c *Console) displayOrders() {
	pending := c.store.PendingOrders()
	if len(pending) == 0 {
		c.printf("No pending orders!\n")
		return
	}

	c.printf("Pending Orders:\n")
	c.printf("----------------------------------\n")
	c.printf("%-15s %-10s %-10s\n", "Name", "Quantity", "Price")
	c.printf("----------------------------------\n")
	for _, o := range pending {
		c.printf("%-15s %-10d %-10s\n", o.Name, o.Quantity, o.Price.StringFixed(2))
	}
}

func (c *Console) processOrder() {
	out := c.store.ProcessNextOrder()
	switch out.Kind {
	case orders.OutcomeNoOrders:
		c.printf("No orders to process!\n")
	case orders.OutcomeRejected:
		c.printf("Insufficient stock or medicine not found!\n")
	case orders.OutcomeFulfilled:
		c.printf("Order processed: %s | Shelf: %s | Total: %s\n", out.Name, out.Shelf, out.Total.StringFixed(2))
	}
}

func (c *Console) searchMedicine() error {
	name, err := c.prompt("Enter medicine name to search")
	if err != nil {
		return err
	}

	m, ok := c.store.FindMedicine(validation.Normalize(name))
	if !ok {
		c.printf("Medicine not found!\n")
		return nil
	}
	c.printf("Found: %s | Qty:%d | Price:%s | Exp:%s | Shelf:%s\n",
		m.Name, m.Quantity, m.Price.StringFixed(2), m.ExpiryDate, m.Shelf)
	return nil
}

// updateFields maps the update sub-menu to field selectors and prompts
var updateFields = map[string]struct {
	field  string
	prompt string
}{
	"1": {"quantity", "Enter new quantity"},
	"2": {"price", "Enter new price"},
	"3": {"expiry_date", "Enter new expiry date"},
	"4": {"shelf", "Enter new shelf"},
}

func (c *Console) updateMedicine() error {
	name, err := c.prompt("Enter medicine name to update")
	if err != nil {
		return err
	}
	name = validation.Normalize(name)

	if _, ok := c.store.FindMedicine(name); !ok {
		c.printf("Medicine not found!\n")
		return nil
	}

	c.printf("1. Update Quantity\n")
	c.printf("2. Update Price\n")
	c.printf("3. Update Expiry Date\n")
	c.printf("4. Update Shelf\n")
	choice, err := c.prompt("Enter choice")
	if err != nil {
		return err
	}

	opt, ok := updateFields[choice]
	if !ok {
		c.printf("Invalid option!\n")
		return nil
	}

	raw, err := c.prompt(opt.prompt)
	if err != nil {
		return err
	}
	field, value, err := c.validator.ParseUpdate(opt.field, raw)
	if err != nil {
		return err
	}

	if _, err := c.store.UpdateMedicine(name, field, value); err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			c.printf("Medicine not found!\n")
			return nil
		}
		return err
	}
	c.printf("Medicine updated successfully!\n")
	return nil
}

func (c *Console) saveAndExit() error {
	if err := c.store.Save(); err != nil {
		c.printf("Failed to save data: %v\n", err)
		return err
	}
	c.printf("Data saved. Exiting system...\n")
	return nil
}

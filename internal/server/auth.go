package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/logger"
	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/savegame"
)

var errConnectionClosed = errors.New("connection closed")

const welcomeBanner = `
=====================================
           ABYSS  FORGE
=====================================

  [L] Load a save
  [N] New save
  [D] Delete a save

Enter choice: `

// handleAuth runs the save selection flow for a new connection and returns
// the claimed save record.
func (s *Server) handleAuth(client Client) (*database.SaveRecord, error) {
	client.WriteLine(welcomeBanner)

	choice, err := client.ReadLine()
	if err != nil {
		return nil, errConnectionClosed
	}

	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "l", "load":
		return s.handleLoad(client)
	case "n", "new":
		return s.handleNew(client)
	case "d", "delete":
		if err := s.handleDelete(client); err != nil {
			return nil, err
		}
		return nil, errors.New("save deleted")
	default:
		client.WriteLine("Invalid choice. Disconnecting.\n")
		return nil, errors.New("invalid choice")
	}
}

// checkLocked tells a locked out client how long to wait
func (s *Server) checkLocked(client Client) error {
	if s.loginRateLimiter == nil {
		return nil
	}
	if locked, remaining := s.loginRateLimiter.IsLocked(client.RemoteAddr()); locked {
		client.WriteLine(fmt.Sprintf("Too many failed attempts. Please wait %d seconds.\n", int(remaining.Seconds())))
		loginsTotal.WithLabelValues("locked").Inc()
		return errors.New("rate limited")
	}
	return nil
}

// readCredentials asks for a slot and passphrase and checks them
func (s *Server) readCredentials(client Client) (*database.SaveRecord, error) {
	if err := s.checkLocked(client); err != nil {
		return nil, err
	}

	client.WriteLine("Slot: ")
	slot, err := client.ReadLine()
	if err != nil {
		return nil, errConnectionClosed
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		client.WriteLine("Slot cannot be empty.\n")
		return nil, errors.New("empty slot")
	}

	client.WriteLine("Passphrase: ")
	passphrase, err := client.ReadLine()
	if err != nil {
		return nil, errConnectionClosed
	}

	ip := client.RemoteAddr()
	rec, err := s.db.Authenticate(slot, passphrase)
	if err != nil {
		if !errors.Is(err, database.ErrInvalidCredentials) {
			client.WriteLine("An error occurred. Please try again.\n")
			return nil, err
		}
		logger.Info("Failed login attempt", "slot", slot, "ip", ip, "event", "login_failed")
		loginsTotal.WithLabelValues("failed").Inc()
		if s.loginRateLimiter != nil {
			if locked, d := s.loginRateLimiter.RecordFailure(ip); locked {
				logger.Warning("IP rate limited after failed logins",
					"ip", ip,
					"lockout_seconds", int(d.Seconds()),
					"event", "login_ratelimit")
				client.WriteLine(fmt.Sprintf("Invalid slot or passphrase. Too many attempts - locked out for %d seconds.\n", int(d.Seconds())))
				return nil, errors.New("rate limited")
			}
		}
		client.WriteLine("Invalid slot or passphrase.\n")
		return nil, err
	}

	if s.loginRateLimiter != nil {
		s.loginRateLimiter.RecordSuccess(ip)
	}
	return rec, nil
}

// handleLoad opens an existing save
func (s *Server) handleLoad(client Client) (*database.SaveRecord, error) {
	client.WriteLine("\n--- Load ---\n")

	rec, err := s.readCredentials(client)
	if err != nil {
		return nil, err
	}

	loginsTotal.WithLabelValues("ok").Inc()
	logger.Info("Successful login", "slot", rec.Slot, "ruleset", rec.Ruleset, "ip", client.RemoteAddr(), "event", "login_success")
	client.WriteLine(fmt.Sprintf("\nWelcome back, %s!\n", rec.Slot))
	return rec, nil
}

// handleNew claims a slot and writes a fresh player to it
func (s *Server) handleNew(client Client) (*database.SaveRecord, error) {
	client.WriteLine("\n--- New Save ---\n")
	client.WriteLine("Choose a slot name: ")
	slot, err := client.ReadLine()
	if err != nil {
		return nil, errConnectionClosed
	}
	slot = strings.TrimSpace(slot)
	if err := database.ValidateSlotName(slot); err != nil {
		client.WriteLine("Slot names are 2-24 letters, digits, - or _.\n")
		return nil, err
	}
	if verdict := s.nameFilter.Check(slot); !verdict.Allowed {
		client.WriteLine(verdict.Reason + "\n")
		loginsTotal.WithLabelValues("rejected_name").Inc()
		return nil, errors.New("slot name rejected")
	}

	exists, err := s.db.SlotExists(slot)
	if err != nil {
		client.WriteLine("An error occurred. Please try again.\n")
		return nil, err
	}
	if exists {
		client.WriteLine("That slot is already taken.\n")
		return nil, database.ErrSlotExists
	}

	policy := s.cfg.Passphrase
	client.WriteLine(fmt.Sprintf("Choose a passphrase (%s): ", policy.RequirementsText()))
	passphrase, err := client.ReadLine()
	if err != nil {
		return nil, errConnectionClosed
	}
	if msg := policy.ValidatePassphrase(passphrase); msg != "" {
		client.WriteLine(msg + "\n")
		return nil, errors.New("passphrase requirements not met")
	}

	client.WriteLine("Confirm passphrase: ")
	confirm, err := client.ReadLine()
	if err != nil {
		return nil, errConnectionClosed
	}
	if passphrase != confirm {
		client.WriteLine("Passphrases do not match.\n")
		return nil, errors.New("passphrase mismatch")
	}

	client.WriteLine(fmt.Sprintf("Rules [%s] (default %s): ", strings.Join(s.ruleNames(), "/"), s.defaultRules.Name))
	choice, err := client.ReadLine()
	if err != nil {
		return nil, errConnectionClosed
	}
	r := s.defaultRules
	// WebSocket clients drop blank lines, so "default" stands in for Enter
	if choice = strings.ToLower(strings.TrimSpace(choice)); choice != "" && choice != "default" {
		var ok bool
		if r, ok = s.rules[choice]; !ok {
			client.WriteLine(fmt.Sprintf("Unknown rules %q.\n", choice))
			return nil, errors.New("unknown ruleset")
		}
	}

	data, err := savegame.Encode(player.New(r))
	if err != nil {
		client.WriteLine("An error occurred. Please try again.\n")
		return nil, err
	}
	rec, err := s.db.CreateSave(slot, passphrase, r.Name, data, savegame.Checksum(data))
	if err != nil {
		if errors.Is(err, database.ErrSlotExists) {
			client.WriteLine("That slot is already taken.\n")
		} else {
			client.WriteLine("An error occurred. Please try again.\n")
		}
		return nil, err
	}

	loginsTotal.WithLabelValues("created").Inc()
	logger.Info("Save created", "slot", rec.Slot, "ruleset", rec.Ruleset, "ip", client.RemoteAddr(), "event", "save_create")
	client.WriteLine(fmt.Sprintf("\nSave created! Welcome to the forge, %s.\n", rec.Slot))
	return rec, nil
}

// handleDelete removes a save after checking its passphrase
func (s *Server) handleDelete(client Client) error {
	client.WriteLine("\n--- Delete ---\n")

	rec, err := s.readCredentials(client)
	if err != nil {
		return err
	}
	if s.isOnline(rec.Slot) {
		client.WriteLine("That save is in play and cannot be deleted.\n")
		return errors.New("slot online")
	}

	client.WriteLine(fmt.Sprintf("Type DELETE to erase %s for good: ", rec.Slot))
	confirm, err := client.ReadLine()
	if err != nil {
		return errConnectionClosed
	}
	if strings.TrimSpace(confirm) != "DELETE" {
		client.WriteLine("Nothing was deleted.\n")
		return errors.New("delete not confirmed")
	}

	if err := s.db.DeleteSave(rec.Slot); err != nil {
		client.WriteLine("An error occurred. Please try again.\n")
		return err
	}
	logger.Info("Save deleted", "slot", rec.Slot, "ip", client.RemoteAddr(), "event", "save_delete")
	client.WriteLine(fmt.Sprintf("%s has been erased.\n", rec.Slot))
	return nil
}

// Package timeline joins change-document headers with their items and merges
// all sources into a single chronological record stream.
package timeline

import (
	"fmt"

	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// docKey is the composite join key between CDHDR and CDPOS rows.
type docKey struct {
	ObjectClass string
	ObjectID    string
	DocNumber   string
}

func keyOf(rec *model.LogRecord) docKey {
	return docKey{
		ObjectClass: rec.ObjectClass,
		ObjectID:    rec.ObjectID,
		DocNumber:   rec.DocNumber,
	}
}

// JoinResult holds the joined change-document records and join diagnostics.
type JoinResult struct {
	Records []*model.LogRecord

	// HeaderOnly counts CDHDR rows with zero matching items.
	HeaderOnly int
	// Orphans counts CDPOS rows with no matching header.
	Orphans int
	// Diagnostics are non-fatal findings surfaced in the run summary.
	Diagnostics []string
}

// Join correlates CDHDR headers with CDPOS items on (object class, object ID,
// document number). Each item becomes one output record carrying the header's
// user, timestamp and transaction code. Headers without items are emitted as
// header-only records. Items without a header are kept and flagged as orphans,
// never dropped.
func Join(headers, items []*model.LogRecord, log *logging.Logger) *JoinResult {
	if log == nil {
		log = logging.Discard()
	}
	res := &JoinResult{Records: make([]*model.LogRecord, 0, len(headers)+len(items))}

	byKey := make(map[docKey]*model.LogRecord, len(headers))
	matched := make(map[docKey]int, len(headers))
	for _, h := range headers {
		byKey[keyOf(h)] = h
	}

	for _, item := range items {
		k := keyOf(item)
		h, ok := byKey[k]
		if !ok {
			item.OrphanItem = true
			if item.User == "" {
				item.User = "UNKNOWN"
			}
			res.Orphans++
			msg := fmt.Sprintf("orphan change item: no header for class=%q object=%q doc=%q",
				k.ObjectClass, k.ObjectID, k.DocNumber)
			res.Diagnostics = append(res.Diagnostics, msg)
			log.WithFields(map[string]any{
				"object_class": k.ObjectClass,
				"object_id":    k.ObjectID,
				"doc_number":   k.DocNumber,
			}).Warn("orphan change item without header")
			res.Records = append(res.Records, item)
			continue
		}
		matched[k]++
		item.User = h.User
		item.Timestamp = h.Timestamp
		if item.TCode == "" {
			item.TCode = h.TCode
		}
		if item.Ticket == "" {
			item.Ticket = h.Ticket
		}
		res.Records = append(res.Records, item)
	}

	for _, h := range headers {
		if matched[keyOf(h)] > 0 {
			continue
		}
		res.HeaderOnly++
		res.Records = append(res.Records, h)
	}

	log.WithFields(map[string]any{
		"headers":     len(headers),
		"items":       len(items),
		"joined":      len(res.Records),
		"header_only": res.HeaderOnly,
		"orphans":     res.Orphans,
	}).Info("change document join complete")
	return res
}

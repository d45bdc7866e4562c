package opendata

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/stefanoamorelli/ariregister"
)

// streamArray streams each element of a top-level JSON array to emit
// without ever holding the full parsed document. The dumps reach
// multiple gigabytes, so an event-driven tokenizer assembles exactly one
// element at a time; elements that are not objects are counted and
// dropped.
func streamArray(ctx context.Context, path string, emit func(map[string]any) error) (skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ariregister.Errorf(ariregister.EUNAVAILABLE,
				"dump file %s not found; re-download it from avaandmed.ariregister.rik.ee", path)
		}
		return 0, err
	}
	defer f.Close()

	h := &arrayHandler{ctx: ctx, emit: emit}
	if err := oj.TokenizeLoad(bufio.NewReaderSize(f, 1<<20), h); err != nil {
		// emit and context errors travel through the handler; malformed
		// JSON surfaces from the tokenizer itself.
		if h.err != nil {
			return h.skipped, h.err
		}
		return h.skipped, ariregister.Errorf(ariregister.EINVALID, "malformed JSON in %s: %v", path, err)
	}
	if h.err != nil {
		return h.skipped, h.err
	}
	return h.skipped, nil
}

// arrayHandler is an oj.TokenHandler that builds one top-level array
// element at a time on a small container stack. Once the handler has
// recorded an error it stops assembling and drains the remaining tokens.
type arrayHandler struct {
	ctx     context.Context
	emit    func(map[string]any) error
	stack   []frame
	skipped int
	err     error
}

// frame is one partially built container. root marks the top-level
// array whose elements are emitted instead of accumulated.
type frame struct {
	obj  map[string]any
	arr  []any
	key  string
	root bool
}

func (h *arrayHandler) ObjectStart() {
	if h.err != nil {
		return
	}
	h.stack = append(h.stack, frame{obj: map[string]any{}})
}

func (h *arrayHandler) ObjectEnd() {
	if h.err != nil || len(h.stack) == 0 {
		return
	}
	top := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	h.add(top.obj)
}

func (h *arrayHandler) ArrayStart() {
	if h.err != nil {
		return
	}
	if len(h.stack) == 0 {
		h.stack = append(h.stack, frame{root: true})
		return
	}
	h.stack = append(h.stack, frame{arr: []any{}})
}

func (h *arrayHandler) ArrayEnd() {
	if h.err != nil || len(h.stack) == 0 {
		return
	}
	top := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	if top.root {
		return
	}
	h.add(top.arr)
}

func (h *arrayHandler) Key(key string) {
	if h.err != nil || len(h.stack) == 0 {
		return
	}
	h.stack[len(h.stack)-1].key = key
}

func (h *arrayHandler) Null()           { h.add(nil) }
func (h *arrayHandler) Bool(v bool)     { h.add(v) }
func (h *arrayHandler) Int(v int64)     { h.add(v) }
func (h *arrayHandler) Float(v float64) { h.add(v) }
func (h *arrayHandler) Number(v string) { h.add(v) }
func (h *arrayHandler) String(v string) { h.add(v) }

// add places a completed value into the enclosing container, or emits
// it when the enclosing container is the top-level array.
func (h *arrayHandler) add(v any) {
	if h.err != nil || len(h.stack) == 0 {
		return
	}
	top := &h.stack[len(h.stack)-1]
	if top.root {
		obj, ok := v.(map[string]any)
		if !ok {
			h.skipped++
			return
		}
		if err := h.ctx.Err(); err != nil {
			h.err = err
			return
		}
		if err := h.emit(obj); err != nil {
			h.err = err
		}
		return
	}
	if top.obj != nil {
		top.obj[top.key] = v
		return
	}
	top.arr = append(top.arr, v)
}

// stringValue renders a decoded JSON scalar as a trimmed string. Numeric
// registry codes appear without quotes in some dumps.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}

// stringField returns the named field of obj as a string.
func stringField(obj map[string]any, key string) string {
	if key == "" {
		return ""
	}
	return stringValue(obj[key])
}

// General-data dump field names.
const (
	keyRegistryCode    = "ariregistri_kood"
	keyEmail           = "email"
	keyPhone           = "telefon"
	keyCapital         = "kapitali_suurus"
	keyCapitalCurrency = "kapitali_valuuta"
	keyActivityCode    = "pohitegevusala_emtak_kood"
	keyActivityText    = "pohitegevusala_tekstina"
)

// PersonDump describes how one nested-person dump maps onto child rows:
// which nested array holds the records and which locale-specific field
// names carry each part.
type PersonDump struct {
	Kind         ariregister.PersonKind
	ArrayKey     string
	FirstNameKey string
	LastNameKey  string
	RoleKey      string
	RoleTextKey  string
	StartKey     string
	EndKey       string
	EmailKey     string
}

// The three person dumps published by the registry.
var (
	// BoardMemberDump holds persons entered on the registry card.
	BoardMemberDump = PersonDump{
		Kind:         ariregister.KindBoardMember,
		ArrayKey:     "kaardile_kantud_isikud",
		FirstNameKey: "eesnimi",
		LastNameKey:  "nimi_arinimi",
		RoleKey:      "isiku_roll",
		RoleTextKey:  "isiku_roll_tekstina",
		StartKey:     "algus_kpv",
		EndKey:       "lopp_kpv",
		EmailKey:     "email",
	}

	// ShareholderDump holds shareholder entries.
	ShareholderDump = PersonDump{
		Kind:         ariregister.KindShareholder,
		ArrayKey:     "osanikud",
		FirstNameKey: "eesnimi",
		LastNameKey:  "nimi_arinimi",
		RoleKey:      "isiku_tyyp",
		RoleTextKey:  "isiku_tyyp_tekstina",
		StartKey:     "algus_kpv",
		EndKey:       "lopp_kpv",
	}

	// BeneficialOwnerDump holds beneficial-owner entries.
	BeneficialOwnerDump = PersonDump{
		Kind:         ariregister.KindBeneficialOwner,
		ArrayKey:     "kasusaajad",
		FirstNameKey: "eesnimi",
		LastNameKey:  "nimi",
		RoleKey:      "kontrolli_teostamise_viis",
		RoleTextKey:  "kontrolli_teostamise_viis_tekstina",
		StartKey:     "algus_kpv",
		EndKey:       "lopp_kpv",
	}
)

// decodePersons flattens the dump's nested array inside one top-level
// object into child rows tagged with the parent registry code. A
// malformed nested structure yields ok=false and the whole object is
// skipped; individual non-object entries are dropped silently inside an
// otherwise well-formed array.
func decodePersons(obj map[string]any, dump PersonDump) (code string, persons []*ariregister.Person, ok bool) {
	code = stringField(obj, keyRegistryCode)
	if code == "" {
		return "", nil, false
	}

	nested, present := obj[dump.ArrayKey]
	if !present || nested == nil {
		return code, nil, true
	}
	entries, isArray := nested.([]any)
	if !isArray {
		return "", nil, false
	}

	for i, entry := range entries {
		m, isObj := entry.(map[string]any)
		if !isObj {
			continue
		}
		p := &ariregister.Person{
			RegistryCode: code,
			Kind:         dump.Kind,
			Position:     i,
			FirstName:    stringField(m, dump.FirstNameKey),
			LastName:     stringField(m, dump.LastNameKey),
			Role:         stringField(m, dump.RoleKey),
			RoleText:     stringField(m, dump.RoleTextKey),
			StartDate:    stringField(m, dump.StartKey),
			EndDate:      stringField(m, dump.EndKey),
			Email:        stringField(m, dump.EmailKey),
		}
		p.FullName = ariregister.JoinName(p.FirstName, p.LastName)
		persons = append(persons, p)
	}
	return code, persons, true
}

// decodeGeneralData maps one top-level general-data object onto a
// supplementary-attributes record. The whole object is retained verbatim
// in Raw so unmodeled fields survive the import.
func decodeGeneralData(obj map[string]any) (*ariregister.GeneralData, bool) {
	code := stringField(obj, keyRegistryCode)
	if code == "" {
		return nil, false
	}

	yld, _ := obj["yldandmed"].(map[string]any)
	if yld == nil {
		yld = obj
	}

	return &ariregister.GeneralData{
		RegistryCode:    code,
		Email:           stringField(yld, keyEmail),
		Phone:           stringField(yld, keyPhone),
		Capital:         stringField(yld, keyCapital),
		CapitalCurrency: stringField(yld, keyCapitalCurrency),
		ActivityCode:    stringField(yld, keyActivityCode),
		ActivityText:    stringField(yld, keyActivityText),
		Raw:             oj.JSON(obj),
	}, true
}

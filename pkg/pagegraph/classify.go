package pagegraph

import (
	"github.com/pagegraph-tools/pagegraph/pkg/errors"
	"github.com/pagegraph-tools/pagegraph/pkg/graphml"
)

// Attribute names used by the variant field mappings.
const (
	attrTagName     = "tag name"
	attrIsDeleted   = "is deleted"
	attrText        = "text"
	attrURL         = "url"
	attrFrameID     = "frame id"
	attrScriptType  = "script type"
	attrSource      = "source"
	attrStorageType = "storage type"
	attrMethod      = "method"
	attrKey         = "key"
	attrValue       = "value"
	attrParent      = "parent"
	attrBefore      = "before"
	attrAttrName    = "attr name"
	attrRequestID   = "request id"
	attrRequestType = "request type"
	attrStatus      = "status"
	attrSize        = "size"
	attrTimestamp   = "timestamp"
)

// fieldReader extracts variant fields from a decoded attribute mapping,
// recording the first required-field violation instead of failing eagerly.
// Optional fields with undecodable values degrade to their defaults.
type fieldReader struct {
	elemID string
	kind   string
	attrs  *graphml.Attributes
	used   map[string]bool
	err    error
}

func newFieldReader(elemID, kind string, attrs *graphml.Attributes) *fieldReader {
	return &fieldReader{elemID: elemID, kind: kind, attrs: attrs, used: make(map[string]bool)}
}

func (r *fieldReader) missing(name string) {
	if r.err == nil {
		r.err = errors.New(errors.ErrCodeMissingRequiredField,
			"element %s (kind %q): required field %q absent or undecodable", r.elemID, r.kind, name)
	}
}

func (r *fieldReader) requireString(name string) string {
	r.used[name] = true
	v, ok := r.attrs.Get(name)
	if !ok {
		r.missing(name)
		return ""
	}
	return v.String()
}

func (r *fieldReader) optString(name string) string {
	r.used[name] = true
	v, _ := r.attrs.Get(name)
	return v.Raw
}

func (r *fieldReader) optBool(name string, def bool) bool {
	r.used[name] = true
	v, ok := r.attrs.Get(name)
	if !ok {
		return def
	}
	b, ok := v.AsBool()
	if !ok {
		return def
	}
	return b
}

func (r *fieldReader) requireInt(name string) int64 {
	r.used[name] = true
	v, ok := r.attrs.Get(name)
	if !ok {
		r.missing(name)
		return 0
	}
	n, ok := v.AsInt()
	if !ok {
		r.missing(name)
		return 0
	}
	return n
}

func (r *fieldReader) optInt(name string, def int64) int64 {
	r.used[name] = true
	v, ok := r.attrs.Get(name)
	if !ok {
		return def
	}
	n, ok := v.AsInt()
	if !ok {
		return def
	}
	return n
}

// extras returns the attributes not consumed by the variant's dedicated
// fields, verbatim. The kind discriminant and timestamp never count as
// extras; they belong to the element, not the variant.
func (r *fieldReader) extras() map[string]string {
	var out map[string]string
	for _, name := range r.attrs.Names() {
		if r.used[name] || name == graphml.NodeTypeAttr || name == graphml.EdgeTypeAttr || name == attrTimestamp {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		v, _ := r.attrs.Get(name)
		out[name] = v.Raw
	}
	return out
}

func (r *fieldReader) finish() error { return r.err }

// nodeTable maps node kind tags to variant builders. Node and edge kinds
// are disjoint; each table is consulted only for its element class.
var nodeTable = map[string]func(r *fieldReader) (NodeType, error){
	KindHTMLElement: func(r *fieldReader) (NodeType, error) {
		t := HTMLElement{
			TagName:   r.requireString(attrTagName),
			IsDeleted: r.optBool(attrIsDeleted, false),
		}
		t.Attributes = r.extras()
		return t, r.finish()
	},
	KindTextNode: func(r *fieldReader) (NodeType, error) {
		t := TextNode{
			Text:      r.optString(attrText),
			IsDeleted: r.optBool(attrIsDeleted, false),
		}
		return t, r.finish()
	},
	KindDOMRoot: func(r *fieldReader) (NodeType, error) {
		t := DOMRoot{
			URL:     r.optString(attrURL),
			FrameID: r.optString(attrFrameID),
		}
		return t, r.finish()
	},
	KindFrameOwner: func(r *fieldReader) (NodeType, error) {
		return FrameOwner{TagName: r.optString(attrTagName)}, r.finish()
	},
	KindRemoteFrame: func(r *fieldReader) (NodeType, error) {
		return RemoteFrame{FrameID: r.requireString(attrFrameID)}, r.finish()
	},
	KindScript: func(r *fieldReader) (NodeType, error) {
		t := Script{
			ScriptType: r.requireString(attrScriptType),
			Source:     r.optString(attrSource),
		}
		return t, r.finish()
	},
	KindStorage: func(r *fieldReader) (NodeType, error) {
		return Storage{StorageType: r.requireString(attrStorageType)}, r.finish()
	},
	KindLocalStorage: func(r *fieldReader) (NodeType, error) {
		return LocalStorage{}, nil
	},
	KindSessionStorage: func(r *fieldReader) (NodeType, error) {
		return SessionStorage{}, nil
	},
	KindCookieJar: func(r *fieldReader) (NodeType, error) {
		return CookieJar{}, nil
	},
	KindWebAPI: func(r *fieldReader) (NodeType, error) {
		return WebAPI{Method: r.requireString(attrMethod)}, r.finish()
	},
	KindJSBuiltin: func(r *fieldReader) (NodeType, error) {
		return JSBuiltin{Method: r.requireString(attrMethod)}, r.finish()
	},
	KindResource: func(r *fieldReader) (NodeType, error) {
		return Resource{URL: r.requireString(attrURL)}, r.finish()
	},
	KindParser: func(r *fieldReader) (NodeType, error) {
		return Parser{}, nil
	},
	KindExtensions: func(r *fieldReader) (NodeType, error) {
		return Extensions{}, nil
	},
}

// edgeTable maps edge kind tags to variant builders.
var edgeTable = map[string]func(r *fieldReader) (EdgeType, error){
	KindStructure: func(r *fieldReader) (EdgeType, error) {
		return Structure{}, nil
	},
	KindCreateNode: func(r *fieldReader) (EdgeType, error) {
		return CreateNode{}, nil
	},
	KindInsertNode: func(r *fieldReader) (EdgeType, error) {
		t := InsertNode{
			ParentID: r.optString(attrParent),
			BeforeID: r.optString(attrBefore),
		}
		return t, r.finish()
	},
	KindRemoveNode: func(r *fieldReader) (EdgeType, error) {
		return RemoveNode{}, nil
	},
	KindDeleteNode: func(r *fieldReader) (EdgeType, error) {
		return DeleteNode{}, nil
	},
	KindSetAttribute: func(r *fieldReader) (EdgeType, error) {
		t := SetAttribute{
			Key:   r.requireString(attrKey),
			Value: r.optString(attrValue),
		}
		return t, r.finish()
	},
	KindDeleteAttribute: func(r *fieldReader) (EdgeType, error) {
		return DeleteAttribute{Key: r.requireString(attrKey)}, r.finish()
	},
	KindExecute: func(r *fieldReader) (EdgeType, error) {
		return Execute{}, nil
	},
	KindExecuteFromAttribute: func(r *fieldReader) (EdgeType, error) {
		return ExecuteFromAttribute{AttrName: r.requireString(attrAttrName)}, r.finish()
	},
	KindRequestStart: func(r *fieldReader) (EdgeType, error) {
		t := RequestStart{
			RequestID:   r.requireInt(attrRequestID),
			RequestType: r.optString(attrRequestType),
		}
		return t, r.finish()
	},
	KindRequestComplete: func(r *fieldReader) (EdgeType, error) {
		t := RequestComplete{
			RequestID: r.requireInt(attrRequestID),
			Status:    r.optString(attrStatus),
			Size:      r.optInt(attrSize, 0),
		}
		return t, r.finish()
	},
	KindRequestError: func(r *fieldReader) (EdgeType, error) {
		return RequestError{RequestID: r.requireInt(attrRequestID)}, r.finish()
	},
	KindJSCall: func(r *fieldReader) (EdgeType, error) {
		return JSCall{Method: r.requireString(attrMethod)}, r.finish()
	},
	KindJSResult: func(r *fieldReader) (EdgeType, error) {
		return JSResult{Value: r.optString(attrValue)}, r.finish()
	},
	KindStorageSet: func(r *fieldReader) (EdgeType, error) {
		t := StorageSet{
			Key:   r.requireString(attrKey),
			Value: r.optString(attrValue),
		}
		return t, r.finish()
	},
	KindStorageRead: func(r *fieldReader) (EdgeType, error) {
		return StorageRead{Key: r.requireString(attrKey)}, r.finish()
	},
	KindStorageDelete: func(r *fieldReader) (EdgeType, error) {
		return StorageDelete{Key: r.requireString(attrKey)}, r.finish()
	},
}

// classifyNode selects the typed variant for one raw node element.
// In strict mode (the default) unknown kinds and required-field violations
// abort classification; in lenient mode both degrade to UnknownNode with
// the full attribute mapping preserved, so classification stays total.
func classifyNode(raw graphml.RawNode, lenient bool) (NodeType, error) {
	build, ok := nodeTable[raw.Kind]
	if !ok {
		if lenient {
			return UnknownNode{Kind: raw.Kind, Attributes: raw.Attrs.Strings()}, nil
		}
		return nil, errors.New(errors.ErrCodeUnclassifiableElement,
			"node %s: unknown kind %q", raw.ID, raw.Kind)
	}
	t, err := build(newFieldReader(raw.ID, raw.Kind, raw.Attrs))
	if err != nil {
		if lenient {
			return UnknownNode{Kind: raw.Kind, Attributes: raw.Attrs.Strings()}, nil
		}
		return nil, err
	}
	return t, nil
}

// classifyEdge selects the typed variant for one raw edge element.
func classifyEdge(raw graphml.RawEdge, lenient bool) (EdgeType, error) {
	build, ok := edgeTable[raw.Kind]
	if !ok {
		if lenient {
			return UnknownEdge{Kind: raw.Kind, Attributes: raw.Attrs.Strings()}, nil
		}
		return nil, errors.New(errors.ErrCodeUnclassifiableElement,
			"edge %s: unknown kind %q", raw.ID, raw.Kind)
	}
	t, err := build(newFieldReader(raw.ID, raw.Kind, raw.Attrs))
	if err != nil {
		if lenient {
			return UnknownEdge{Kind: raw.Kind, Attributes: raw.Attrs.Strings()}, nil
		}
		return nil, err
	}
	return t, nil
}

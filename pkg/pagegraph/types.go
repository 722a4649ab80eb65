package pagegraph

// NodeType is the closed set of node variants observed in PageGraph
// documents. Exactly one variant matches each node; consumers select
// behavior by type switch:
//
//	switch t := n.Type.(type) {
//	case pagegraph.HTMLElement:
//	    use(t.TagName)
//	case pagegraph.Resource:
//	    use(t.URL)
//	}
//
// Unrecognized kinds decode (in lenient mode) to [UnknownNode], which
// preserves the raw attribute mapping so no information is dropped.
type NodeType interface {
	isNodeType()
}

// Canonical kind tags for node elements, as written in the source format.
const (
	KindParser         = "parser"
	KindExtensions     = "extensions"
	KindDOMRoot        = "DOM root"
	KindFrameOwner     = "frame owner"
	KindRemoteFrame    = "remote frame"
	KindHTMLElement    = "html element"
	KindTextNode       = "text node"
	KindScript         = "script"
	KindStorage        = "storage"
	KindLocalStorage   = "local storage"
	KindSessionStorage = "session storage"
	KindCookieJar      = "cookie jar"
	KindWebAPI         = "web API"
	KindJSBuiltin      = "JS builtin"
	KindResource       = "resource"
)

// HTMLElement is a DOM element node. Attributes holds any element
// attributes beyond the dedicated fields, verbatim.
type HTMLElement struct {
	TagName    string
	IsDeleted  bool
	Attributes map[string]string
}

// TextNode is a DOM text node.
type TextNode struct {
	Text      string
	IsDeleted bool
}

// DOMRoot is a document root. The root of the top-level frame carries the
// page URL; nested roots carry their frame's URL.
type DOMRoot struct {
	URL     string
	FrameID string
}

// FrameOwner is an element owning a nested browsing context (iframe, object).
type FrameOwner struct {
	TagName string
}

// RemoteFrame is a cross-process frame boundary.
type RemoteFrame struct {
	FrameID string
}

// Script is an executed script body, distinct from the <script> element
// that carried it.
type Script struct {
	ScriptType string
	Source     string
}

// Storage is a generic storage actor node.
type Storage struct {
	StorageType string
}

// LocalStorage is the window.localStorage actor.
type LocalStorage struct{}

// SessionStorage is the window.sessionStorage actor.
type SessionStorage struct{}

// CookieJar is the document.cookie actor.
type CookieJar struct{}

// WebAPI is an instrumented web platform API.
type WebAPI struct {
	Method string
}

// JSBuiltin is an instrumented JavaScript builtin.
type JSBuiltin struct {
	Method string
}

// Resource is a fetched subresource (script, image, XHR target, ...).
type Resource struct {
	URL string
}

// Parser is the HTML parser actor.
type Parser struct{}

// Extensions is the browser extensions actor.
type Extensions struct{}

// UnknownNode preserves a node whose kind tag has no matching variant.
// The full attribute mapping is kept verbatim.
type UnknownNode struct {
	Kind       string
	Attributes map[string]string
}

func (HTMLElement) isNodeType()    {}
func (TextNode) isNodeType()       {}
func (DOMRoot) isNodeType()        {}
func (FrameOwner) isNodeType()     {}
func (RemoteFrame) isNodeType()    {}
func (Script) isNodeType()         {}
func (Storage) isNodeType()        {}
func (LocalStorage) isNodeType()   {}
func (SessionStorage) isNodeType() {}
func (CookieJar) isNodeType()      {}
func (WebAPI) isNodeType()         {}
func (JSBuiltin) isNodeType()      {}
func (Resource) isNodeType()       {}
func (Parser) isNodeType()         {}
func (Extensions) isNodeType()     {}
func (UnknownNode) isNodeType()    {}

// NodeKind returns the canonical kind tag for a node variant.
// For UnknownNode it returns the source document's kind tag.
func NodeKind(t NodeType) string {
	switch t := t.(type) {
	case HTMLElement:
		return KindHTMLElement
	case TextNode:
		return KindTextNode
	case DOMRoot:
		return KindDOMRoot
	case FrameOwner:
		return KindFrameOwner
	case RemoteFrame:
		return KindRemoteFrame
	case Script:
		return KindScript
	case Storage:
		return KindStorage
	case LocalStorage:
		return KindLocalStorage
	case SessionStorage:
		return KindSessionStorage
	case CookieJar:
		return KindCookieJar
	case WebAPI:
		return KindWebAPI
	case JSBuiltin:
		return KindJSBuiltin
	case Resource:
		return KindResource
	case Parser:
		return KindParser
	case Extensions:
		return KindExtensions
	case UnknownNode:
		return t.Kind
	default:
		return ""
	}
}

// EdgeType is the closed set of edge variants mirroring PageGraph's edge
// taxonomy. See [NodeType] for the matching idiom.
type EdgeType interface {
	isEdgeType()
}

// Canonical kind tags for edge elements.
const (
	KindStructure            = "structure"
	KindCreateNode           = "create node"
	KindInsertNode           = "insert node"
	KindRemoveNode           = "remove node"
	KindDeleteNode           = "delete node"
	KindSetAttribute         = "set attribute"
	KindDeleteAttribute      = "delete attribute"
	KindExecute              = "execute"
	KindExecuteFromAttribute = "execute from attribute"
	KindRequestStart         = "request start"
	KindRequestComplete      = "request complete"
	KindRequestError         = "request error"
	KindJSCall               = "js call"
	KindJSResult             = "js result"
	KindStorageSet           = "storage set"
	KindStorageRead          = "storage read"
	KindStorageDelete        = "storage delete"
)

// Structure is the static parent→child DOM containment relation.
type Structure struct{}

// CreateNode records an actor creating a DOM node.
type CreateNode struct{}

// InsertNode records a DOM insertion. ParentID and BeforeID are the
// format's own node references for the insertion point, kept verbatim.
type InsertNode struct {
	ParentID string
	BeforeID string
}

// RemoveNode records a DOM node being detached from the tree.
type RemoveNode struct{}

// DeleteNode records a DOM node being destroyed.
type DeleteNode struct{}

// SetAttribute records an element attribute write.
type SetAttribute struct {
	Key   string
	Value string
}

// DeleteAttribute records an element attribute removal.
type DeleteAttribute struct {
	Key string
}

// Execute records a script body beginning execution.
type Execute struct{}

// ExecuteFromAttribute records script execution triggered by an event
// handler attribute (onclick, onload, ...).
type ExecuteFromAttribute struct {
	AttrName string
}

// RequestStart records a network request being initiated.
type RequestStart struct {
	RequestID   int64
	RequestType string
}

// RequestComplete records a network request finishing successfully.
type RequestComplete struct {
	RequestID int64
	Status    string
	Size      int64
}

// RequestError records a network request failing.
type RequestError struct {
	RequestID int64
}

// JSCall records a script invoking an instrumented API.
type JSCall struct {
	Method string
}

// JSResult records a value returned from an instrumented API.
type JSResult struct {
	Value string
}

// StorageSet records a storage write.
type StorageSet struct {
	Key   string
	Value string
}

// StorageRead records a storage read.
type StorageRead struct {
	Key string
}

// StorageDelete records a storage key removal.
type StorageDelete struct {
	Key string
}

// UnknownEdge preserves an edge whose kind tag has no matching variant.
type UnknownEdge struct {
	Kind       string
	Attributes map[string]string
}

func (Structure) isEdgeType()            {}
func (CreateNode) isEdgeType()           {}
func (InsertNode) isEdgeType()           {}
func (RemoveNode) isEdgeType()           {}
func (DeleteNode) isEdgeType()           {}
func (SetAttribute) isEdgeType()         {}
func (DeleteAttribute) isEdgeType()      {}
func (Execute) isEdgeType()              {}
func (ExecuteFromAttribute) isEdgeType() {}
func (RequestStart) isEdgeType()         {}
func (RequestComplete) isEdgeType()      {}
func (RequestError) isEdgeType()         {}
func (JSCall) isEdgeType()               {}
func (JSResult) isEdgeType()             {}
func (StorageSet) isEdgeType()           {}
func (StorageRead) isEdgeType()          {}
func (StorageDelete) isEdgeType()        {}
func (UnknownEdge) isEdgeType()          {}

// EdgeKind returns the canonical kind tag for an edge variant.
// For UnknownEdge it returns the source document's kind tag.
func EdgeKind(t EdgeType) string {
	switch t := t.(type) {
	case Structure:
		return KindStructure
	case CreateNode:
		return KindCreateNode
	case InsertNode:
		return KindInsertNode
	case RemoveNode:
		return KindRemoveNode
	case DeleteNode:
		return KindDeleteNode
	case SetAttribute:
		return KindSetAttribute
	case DeleteAttribute:
		return KindDeleteAttribute
	case Execute:
		return KindExecute
	case ExecuteFromAttribute:
		return KindExecuteFromAttribute
	case RequestStart:
		return KindRequestStart
	case RequestComplete:
		return KindRequestComplete
	case RequestError:
		return KindRequestError
	case JSCall:
		return KindJSCall
	case JSResult:
		return KindJSResult
	case StorageSet:
		return KindStorageSet
	case StorageRead:
		return KindStorageRead
	case StorageDelete:
		return KindStorageDelete
	case UnknownEdge:
		return t.Kind
	default:
		return ""
	}
}

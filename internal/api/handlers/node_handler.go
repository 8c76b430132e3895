package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/chain-sim/internal/chain"
	"github.com/thanhnp/chain-sim/internal/simulator"
	"github.com/thanhnp/chain-sim/internal/storage"
)

// NodeHandler handles node-related API requests. Commands go through the
// simulator service; block reads come from the block store.
type NodeHandler struct {
	svc        *simulator.Service
	blockStore *storage.BlockStore
}

// NewNodeHandler creates a new NodeHandler
func NewNodeHandler(svc *simulator.Service, blockStore *storage.BlockStore) *NodeHandler {
	return &NodeHandler{svc: svc, blockStore: blockStore}
}

type createNodeRequest struct {
	Difficulty *int `json:"difficulty"`
}

type appendBlockRequest struct {
	Payload []string `json:"payload"`
}

type corruptRequest struct {
	Index   int      `json:"index"`
	Payload []string `json:"payload"`
}

// Create registers a new node with a mined genesis block
// POST /api/v1/nodes
func (h *NodeHandler) Create(c *gin.Context) {
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	difficulty := -1
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}

	nodeID, err := h.svc.CreateNode(difficulty)
	if err != nil {
		if errors.Is(err, chain.ErrMiningExhausted) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"node_id": nodeID})
}

// AppendBlock mines a block carrying the posted payload onto the node
// POST /api/v1/nodes/:id/blocks
func (h *NodeHandler) AppendBlock(c *gin.Context) {
	var req appendBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	summary, err := h.svc.AppendBlock(c.Param("id"), req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, simulator.ErrNodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
		case errors.Is(err, chain.ErrMiningExhausted):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, summary)
}

// Corrupt tampers one block's payload without resealing it
// POST /api/v1/nodes/:id/corrupt
func (h *NodeHandler) Corrupt(c *gin.Context) {
	var req corruptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.svc.CorruptNode(c.Param("id"), req.Index, req.Payload); err != nil {
		if errors.Is(err, simulator.ErrNodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetChain returns the node's current chain
// GET /api/v1/nodes/:id/chain
func (h *NodeHandler) GetChain(c *gin.Context) {
	blocks, err := h.svc.Chain(c.Param("id"))
	if err != nil {
		if errors.Is(err, simulator.ErrNodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, blocks)
}

// GetValidity returns the node's chain validation outcome
// GET /api/v1/nodes/:id/validity
func (h *NodeHandler) GetValidity(c *gin.Context) {
	status, err := h.svc.Validity(c.Param("id"))
	if err != nil {
		if errors.Is(err, simulator.ErrNodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetBlock returns a stored block by its hash
// GET /api/v1/nodes/:id/blocks/:hash
func (h *NodeHandler) GetBlock(c *gin.Context) {
	block, err := h.blockStore.GetByHash(c.Param("id"), c.Param("hash"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if block == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Block not found"})
		return
	}

	c.JSON(http.StatusOK, block)
}

// GetTip returns the node's most recently stored block
// GET /api/v1/nodes/:id/blocks/latest
func (h *NodeHandler) GetTip(c *gin.Context) {
	block, err := h.blockStore.GetTip(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if block == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No blocks found"})
		return
	}

	c.JSON(http.StatusOK, block)
}

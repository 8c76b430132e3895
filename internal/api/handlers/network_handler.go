package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/chain-sim/internal/simulator"
)

// NetworkHandler handles network-related API requests
type NetworkHandler struct {
	svc *simulator.Service
}

// NewNetworkHandler creates a new NetworkHandler
func NewNetworkHandler(svc *simulator.Service) *NetworkHandler {
	return &NetworkHandler{svc: svc}
}

type spawnNetworkRequest struct {
	Size       int    `json:"size"`
	SeedNodeID string `json:"seed_node_id"`
}

type attackRequest struct {
	Ratio float64 `json:"ratio"`
}

// Spawn clones a seed node's chain into a network of independent peers
// POST /api/v1/networks
func (h *NetworkHandler) Spawn(c *gin.Context) {
	var req spawnNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	info, err := h.svc.SpawnNetwork(req.Size, req.SeedNodeID)
	if err != nil {
		if errors.Is(err, simulator.ErrNodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seed node not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, info)
}

// Attack runs a majority-power attack simulation against the network
// POST /api/v1/networks/:id/attack
func (h *NetworkHandler) Attack(c *gin.Context) {
	var req attackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	record, err := h.svc.RunAttackSimulation(c.Param("id"), req.Ratio)
	if err != nil {
		if errors.Is(err, simulator.ErrNetworkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Network not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetConsensus re-runs the consensus comparison across the network
// GET /api/v1/networks/:id/consensus
func (h *NetworkHandler) GetConsensus(c *gin.Context) {
	report, err := h.svc.Compare(c.Param("id"))
	if err != nil {
		if errors.Is(err, simulator.ErrNetworkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Network not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetFindings returns the network's integrity findings
// GET /api/v1/networks/:id/findings
func (h *NetworkHandler) GetFindings(c *gin.Context) {
	findings, err := h.svc.GetFindings(c.Param("id"))
	if err != nil {
		if errors.Is(err, simulator.ErrNetworkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Network not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, findings)
}

//go:build rp2040

package main

import (
	"context"
	_ "embed"
	"machine"
	"time"

	"tempnode/core"
	"tempnode/node"
	"tempnode/radio"
	"tempnode/sensor"
)

//go:embed config.json
var configJSON []byte

// Board wiring.
const (
	pinButton  = machine.GPIO3
	pinOneWire = machine.GPIO4
	pinBattery = machine.ADC0

	pinLoRaSCK  = machine.GPIO18
	pinLoRaSDO  = machine.GPIO19
	pinLoRaSDI  = machine.GPIO16
	pinLoRaCS   = machine.GPIO17
	pinLoRaRST  = machine.GPIO20
	pinLoRaDIO0 = machine.GPIO21
	pinLoRaDIO1 = machine.GPIO22

	diagBaud        = 115200
	watchdogTimeout = 8 * time.Second
)

var loopPanics uint32

func main() {
	diag := newDiagLink(diagBaud)
	core.SetDebugWriter(diag.write)

	fw, err := loadFirmwareConfig(configJSON)
	if err != nil {
		halt("config", err)
	}

	wd, err := startWatchdog(watchdogTimeout)
	if err != nil {
		halt("watchdog", err)
	}

	bus := sensor.NewDS18B20Bus(pinOneWire, fw.Node.MaxSensors)
	if err := bus.Discover(fw.Node.SensorResolution()); err != nil {
		core.Debug(core.LevelInfo, "sensor discovery: "+err.Error())
	}
	core.Debugv(core.LevelInfo, "sensors found: ", int64(bus.DeviceCount()))

	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 1_000_000,
		SCK:       pinLoRaSCK,
		SDO:       pinLoRaSDO,
		SDI:       pinLoRaSDI,
	}); err != nil {
		halt("spi", err)
	}

	var n *node.Node
	stack := radio.NewLoRaWANStack(radio.LoRaWANConfig{
		SPI:      machine.SPI0,
		ResetPin: pinLoRaRST,
		CSPin:    pinLoRaCS,
		DIO0Pin:  pinLoRaDIO0,
		DIO1Pin:  pinLoRaDIO1,
		DevEUI:   fw.devEUI,
		AppEUI:   fw.appEUI,
		AppKey:   fw.appKey,

		TxPowerDBm: fw.Node.TxPowerDBm,
	}, func() {
		if n != nil {
			n.RadioISR()
		}
	})

	pinButton.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	n, err = node.New(fw.Node, node.Deps{
		Clock:    awakeTicks,
		LowPower: &lowPower{wd: wd},
		Watchdog: wd,
		Battery:  newBatteryADC(pinBattery),
		Bus:      bus,
		Stack:    stack,
		Button:   pinButton.Get,
	})
	if err != nil {
		halt("node", err)
	}

	if err := pinButton.SetInterrupt(machine.PinFalling, func(p machine.Pin) {
		n.ButtonISR(p.Get())
	}); err != nil {
		halt("button", err)
	}
	if err := stack.Start(); err != nil {
		halt("radio", err)
	}

	n.Start()
	for {
		runLoop(n)
	}
}

// runLoop runs the node until it panics, then dumps the timing ring so the
// monitor shows what led up to it.
func runLoop(n *node.Node) {
	defer func() {
		if r := recover(); r != nil {
			loopPanics++
			core.Debugv(core.LevelInfo, "main loop panic #", int64(loopPanics))
			core.DumpTimingRing()
		}
	}()
	_ = n.Run(context.Background())
}

// halt reports a fatal startup error and stops. The watchdog, if armed,
// resets the board.
func halt(stage string, err error) {
	core.Debug(core.LevelInfo, "fatal "+stage+": "+err.Error())
	core.DumpTimingRing()
	for {
		time.Sleep(time.Second)
	}
}

package config

import "github.com/hamed0406/netmonitor/internal/domain"

// DefaultTargets is the built-in registry used when no targets file exists.
func DefaultTargets() Targets {
	return Targets{
		Servers: []domain.Server{
			{
				ID:   "servidor-sap-hanna",
				Name: "Servidor de conexión aplicaciones SAP",
				Host: "10.238.83.84",
				Services: []domain.Service{
					{Name: "Conexión SAP", Port: 30015, Protocol: "SAP"},
				},
			},
			{
				ID:   "servidor-rlabogs-db02",
				Name: "Servidor RLABOGS-DB02",
				Host: "10.10.1.252",
				Services: []domain.Service{
					{Name: "Afiliaciones", Port: 27732, Protocol: "HTTP"},
					{Name: "Payu", Port: 8005, Protocol: "HTTP"},
					{Name: "API", Port: 37834, Protocol: "HTTP"},
					{Name: "Portal Clientes", Port: 8089, Protocol: "HTTP"},
				},
			},
			{
				ID:   "servidor-rlabogs-app",
				Name: "Servidor RLABOGS-APP",
				Host: "10.238.83.86",
				Services: []domain.Service{
					{Name: "Portal Empleados", Port: 8081, Protocol: "HTTP"},
					{Name: "Synergy", Port: 443, Protocol: "HTTPS"},
				},
			},
			{
				ID:   "servidor-impresion",
				Name: "Servidor de Impresión",
				Host: "10.10.0.30",
				Services: []domain.Service{
					{Name: "Servicio de Impresión", Port: 631, Protocol: "TCP"},
				},
			},
		},
		Uplinks: []domain.Uplink{
			uplink("bogota", "Bogotá Principal", "10.10.40.1", "Bogotá"),
			uplink("san-felipe", "San Felipe", "10.10.41.1", "Bogotá Sede 2"),
			uplink("santander", "Santander", "10.10.103.1", "Bucaramanga"),
			uplink("valle-del-cauca", "Valle del Cauca", "10.10.104.1", "Cali"),
			uplink("antioquia", "Antioquia", "10.10.105.1", "Medellín"),
			uplink("narino", "Nariño", "10.10.106.1", "Pasto"),
			uplink("risaralda", "Risaralda", "10.10.107.1", "Pereira"),
			uplink("bolivar", "Bolívar", "10.10.109.1", "Cartagena"),
			uplink("caqueta", "Caquetá", "10.10.110.1", "Florencia"),
			uplink("tolima", "Tolima", "10.10.220.1", "Ibagué"),
			uplink("putumayo", "Putumayo", "10.10.112.1", "Mocoa"),
			uplink("huila", "Huila", "10.10.113.1", "Neiva"),
			uplink("meta", "Meta", "10.10.119.1", "Villavicencio"),
			uplink("atlantico", "Atlántico", "10.10.120.1", "Barranquilla"),
		},
		Monitoring: DefaultMonitoring(),
	}
}

func uplink(id, name, ip, location string) domain.Uplink {
	return domain.Uplink{ID: id, Name: name, Host: ip, Port: 443, Location: location}
}
